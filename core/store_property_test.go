package core

import (
	"context"
	"testing"

	"github.com/huangsam/contacts/internal/iocache"
	"github.com/huangsam/contacts/internal/remote"
	"github.com/huangsam/contacts/schema"
	"github.com/stretchr/testify/mock"
	"pgregory.net/rapid"
)

func contactGen(id string) *rapid.Generator[schema.Contact] {
	return rapid.Custom(func(rt *rapid.T) schema.Contact {
		return schema.Contact{
			ID:        id,
			FirstName: rapid.StringMatching(`[A-Z][a-z]{1,10}`).Draw(rt, "first"),
			LastName:  rapid.StringMatching(`[A-Z][a-z]{1,12}`).Draw(rt, "last"),
			Age:       rapid.IntRange(0, 120).Draw(rt, "age"),
			Photo:     rapid.SampledFrom([]string{"N/A", "https://picsum.photos/200/300/?blur=2"}).Draw(rt, "photo"),
		}
	})
}

func contactsGen(rt *rapid.T) []schema.Contact {
	ids := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-f0-9]{8}`), 0, 12, rapid.ID[string]).Draw(rt, "ids")
	contacts := make([]schema.Contact, 0, len(ids))
	for _, id := range ids {
		contacts = append(contacts, contactGen(id).Draw(rt, "contact"))
	}
	return contacts
}

func countCalls(svc *remote.MockContactService, method string) int {
	n := 0
	for _, call := range svc.Calls {
		if call.Method == method {
			n++
		}
	}
	return n
}

// Any decodable snapshot is served without touching the remote.
func TestPropertySnapshotHitNeverCallsRemote(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		contacts := contactsGen(rt)
		svc := &remote.MockContactService{}
		snaps := iocache.NewMemorySnapshotStore()
		seedSnapshot(t, snaps, contacts)

		store := NewStore(svc, snaps)
		loads := rapid.IntRange(1, 5).Draw(rt, "loads")
		for range loads {
			got, err := store.Load(context.Background())
			if err != nil {
				rt.Fatalf("load: %v", err)
			}
			if len(got) != len(contacts) {
				rt.Fatalf("got %d contacts, want %d", len(got), len(contacts))
			}
		}
		if len(svc.Calls) != 0 {
			rt.Fatalf("expected no remote calls, got %d", len(svc.Calls))
		}
	})
}

// Delete leaves the list minus that id, in the same order, with no refetch.
func TestPropertyDeleteFiltersLocally(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		contacts := contactsGen(rt)
		if len(contacts) == 0 {
			rt.Skip("nothing to delete")
		}
		target := rapid.SampledFrom(contacts).Draw(rt, "target")

		svc := &remote.MockContactService{}
		svc.On("List", mock.Anything).Return(contacts, nil).Once()
		svc.On("Delete", mock.Anything, target.ID).Return(nil)
		snaps := iocache.NewMemorySnapshotStore()
		store := NewStore(svc, snaps)

		if _, err := store.Load(context.Background()); err != nil {
			rt.Fatalf("load: %v", err)
		}
		if err := store.Delete(context.Background(), target.ID); err != nil {
			rt.Fatalf("delete: %v", err)
		}

		got := store.Contacts()
		if len(got) != len(contacts)-1 {
			rt.Fatalf("got %d contacts, want %d", len(got), len(contacts)-1)
		}
		i := 0
		for _, c := range contacts {
			if c.ID == target.ID {
				continue
			}
			if got[i] != c {
				rt.Fatalf("position %d: got %+v, want %+v", i, got[i], c)
			}
			i++
		}
		if n := countCalls(svc, "List"); n != 1 {
			rt.Fatalf("expected exactly the initial List call, got %d", n)
		}
	})
}

// Create and update both end with exactly one full refetch.
func TestPropertyMutationsRefetchOnce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		after := contactsGen(rt)
		created := contactGen("new-id").Draw(rt, "created")
		useUpdate := rapid.Bool().Draw(rt, "update")

		svc := &remote.MockContactService{}
		svc.On("List", mock.Anything).Return(after, nil)
		svc.On("Create", mock.Anything, created.Draft()).Return(created, nil)
		svc.On("Update", mock.Anything, created.ID, created.Draft()).Return(created, nil)
		store := NewStore(svc, iocache.NewMemorySnapshotStore())

		var err error
		if useUpdate {
			_, err = store.Update(context.Background(), created.ID, created.Draft())
		} else {
			_, err = store.Create(context.Background(), created.Draft())
		}
		if err != nil {
			rt.Fatalf("mutation: %v", err)
		}
		if n := countCalls(svc, "List"); n != 1 {
			rt.Fatalf("expected one refetch, got %d", n)
		}
		if len(store.Contacts()) != len(after) {
			rt.Fatalf("list not replaced by refetch")
		}
	})
}

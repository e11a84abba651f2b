//go:build basic || database

package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/huangsam/contacts/schema"
)

var (
	// sharedContactsPath holds the path to a contacts binary built once for all tests.
	sharedContactsPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getContactsBinary returns the path to the contacts binary, building it once if needed.
func getContactsBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "contacts-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		contactsPath := filepath.Join(tempDir, "contacts")
		buildCmd := exec.Command("go", "build", "-o", contactsPath, "./cmd/contacts")
		buildCmd.Dir = ".." // Build from project root
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build contacts: %v", err))
		}

		sharedContactsPath = contactsPath
	})

	return sharedContactsPath
}

// runContactsCommand runs the binary with env appended to the current environment.
func runContactsCommand(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getContactsBinary(), args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(append(os.Environ(), "HOME="+cmd.Dir), env...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return string(output), err
}

// contactServer is a small remote contact collection that counts list calls.
type contactServer struct {
	mu        sync.Mutex
	contacts  []schema.Contact
	listCalls int
	nextID    int
}

type listOutput struct {
	Body []schema.Contact
}

type contactOutput struct {
	Body schema.Contact
}

type draftInput struct {
	Body schema.ContactDraft
}

type idInput struct {
	ID string `path:"id"`
}

// startContactServer serves the collection over HTTP until the test ends.
func startContactServer(t *testing.T, seed ...schema.Contact) (*contactServer, string) {
	t.Helper()
	cs := &contactServer{contacts: seed}

	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("Contacts", "1.0.0"))

	huma.Get(api, "/contact", func(_ context.Context, _ *struct{}) (*listOutput, error) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		cs.listCalls++
		return &listOutput{Body: schema.CloneContacts(cs.contacts)}, nil
	})
	huma.Post(api, "/contact", func(_ context.Context, in *draftInput) (*contactOutput, error) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		cs.nextID++
		c := schema.Contact{
			ID:        fmt.Sprintf("id-%d", cs.nextID),
			FirstName: in.Body.FirstName,
			LastName:  in.Body.LastName,
			Age:       in.Body.Age,
			Photo:     in.Body.Photo,
		}
		cs.contacts = append(cs.contacts, c)
		return &contactOutput{Body: c}, nil
	})
	huma.Delete(api, "/contact/{id}", func(_ context.Context, in *idInput) (*struct{}, error) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		for i, c := range cs.contacts {
			if c.ID == in.ID {
				cs.contacts = append(cs.contacts[:i], cs.contacts[i+1:]...)
				return nil, nil
			}
		}
		return nil, huma.Error404NotFound("contact not found")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return cs, srv.URL
}

func (cs *contactServer) lists() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.listCalls
}

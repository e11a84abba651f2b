package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/contacts/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	store ContactStore
}

func (h *toolHandler) handleListContacts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contacts, err := h.store.Load(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	return jsonResult(contacts)
}

func (h *toolHandler) handleGetContact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(request.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	contact, err := h.store.GetOne(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
	}
	return jsonResult(contact)
}

func (h *toolHandler) handleCreateContact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draft := schema.ContactDraft{
		FirstName: request.GetString("first_name", ""),
		LastName:  request.GetString("last_name", ""),
		Age:       request.GetInt("age", 0),
		Photo:     request.GetString("photo", ""),
	}

	created, err := h.store.Create(ctx, draft)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create failed: %v", err)), nil
	}
	return jsonResult(created)
}

func (h *toolHandler) handleUpdateContact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(request.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	contacts, err := h.store.Load(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
	}
	current, ok := findContact(contacts, id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("update failed: contact %s not found", id)), nil
	}

	// Pre-fill from the cached contact like the edit form does
	draft := current.Draft()
	draft.FirstName = request.GetString("first_name", draft.FirstName)
	draft.LastName = request.GetString("last_name", draft.LastName)
	draft.Age = request.GetInt("age", draft.Age)
	draft.Photo = request.GetString("photo", draft.Photo)

	updated, err := h.store.Update(ctx, id, draft)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
	}
	return jsonResult(updated)
}

func (h *toolHandler) handleDeleteContact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(request.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	if err := h.store.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Contact %s has been deleted successfully!", id)), nil
}

func (h *toolHandler) handleRefreshContacts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contacts, err := h.store.Refresh(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}
	return jsonResult(contacts)
}

func findContact(contacts []schema.Contact, id string) (schema.Contact, bool) {
	for _, c := range contacts {
		if c.ID == id {
			return c, true
		}
	}
	return schema.Contact{}, false
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/contacts/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ContactStore is the part of the contact store the tools drive.
type ContactStore interface {
	Load(ctx context.Context) ([]schema.Contact, error)
	Refresh(ctx context.Context) ([]schema.Contact, error)
	GetOne(ctx context.Context, id string) (schema.Contact, error)
	Create(ctx context.Context, draft schema.ContactDraft) (schema.Contact, error)
	Update(ctx context.Context, id string, draft schema.ContactDraft) (schema.Contact, error)
	Delete(ctx context.Context, id string) error
}

// NewMCPServer initializes and configures the contacts MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(store ContactStore, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Contacts Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{store: store}

	// --- 1. Tool: list_contacts ---
	s.AddTool(mcp.NewTool("list_contacts",
		mcp.WithDescription("List all contacts. Served from the local snapshot when one exists."),
	), h.handleListContacts)

	// --- 2. Tool: get_contact ---
	s.AddTool(mcp.NewTool("get_contact",
		mcp.WithDescription("Fetch one contact by id, always from the remote service."),
		mcp.WithString("id", mcp.Description("The contact id."), mcp.Required()),
	), h.handleGetContact)

	// --- 3. Tool: create_contact ---
	s.AddTool(mcp.NewTool("create_contact",
		mcp.WithDescription("Create a contact, then refresh the contact list."),
		mcp.WithString("first_name", mcp.Description("First name."), mcp.Required()),
		mcp.WithString("last_name", mcp.Description("Last name."), mcp.Required()),
		mcp.WithNumber("age", mcp.Description("Age in years."), mcp.Required()),
		mcp.WithString("photo", mcp.Description("Photo URL."), mcp.Required()),
	), h.handleCreateContact)

	// --- 4. Tool: update_contact ---
	s.AddTool(mcp.NewTool("update_contact",
		mcp.WithDescription("Update a contact. Omitted fields keep their cached values."),
		mcp.WithString("id", mcp.Description("The contact id."), mcp.Required()),
		mcp.WithString("first_name", mcp.Description("First name.")),
		mcp.WithString("last_name", mcp.Description("Last name.")),
		mcp.WithNumber("age", mcp.Description("Age in years.")),
		mcp.WithString("photo", mcp.Description("Photo URL.")),
	), h.handleUpdateContact)

	// --- 5. Tool: delete_contact ---
	s.AddTool(mcp.NewTool("delete_contact",
		mcp.WithDescription("Delete a contact by id."),
		mcp.WithString("id", mcp.Description("The contact id."), mcp.Required()),
	), h.handleDeleteContact)

	// --- 6. Tool: refresh_contacts ---
	s.AddTool(mcp.NewTool("refresh_contacts",
		mcp.WithDescription("Drop the local snapshot and reload every contact from the remote service."),
	), h.handleRefreshContacts)

	return s
}

// StartMCPServer starts the contacts MCP server on stdio.
func StartMCPServer(_ context.Context, store ContactStore, version string) error {
	s := NewMCPServer(store, version)
	return server.ServeStdio(s)
}

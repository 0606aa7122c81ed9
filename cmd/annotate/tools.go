package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/annotate/internal/types"
)

type (
	// SourceInput contains parameters for reading the source snapshot.
	SourceInput struct {
		Path string `json:"path,omitempty" jsonschema:"Only return this file, or the files below this directory, relative to the project root"`
	}

	// SourceOutput contains a fresh snapshot of the project.
	SourceOutput struct {
		Files      types.Snapshot      `json:"files"`
		TotalFiles int                 `json:"totalFiles"`
		Skipped    []types.SkippedFile `json:"skipped,omitempty"`
	}

	// ReadNotesInput takes no parameters.
	ReadNotesInput struct{}

	// ReadNotesOutput contains the notes document exactly as stored.
	ReadNotesOutput struct {
		Notes string `json:"notes"`
	}

	// WriteNotesInput contains the replacement notes document.
	WriteNotesInput struct {
		Notes string `json:"notes" jsonschema:"Full notes document; replaces the stored one entirely"`
	}

	// WriteNotesOutput contains the result of saving notes.
	WriteNotesOutput struct {
		Success bool `json:"success"`
		Bytes   int  `json:"bytes"`
	}

	// SearchInput contains parameters for searching the source files.
	SearchInput struct {
		Query         string `json:"query" jsonschema:"Search query (plain text or regex if useRegex=true)"`
		UseRegex      bool   `json:"useRegex,omitempty" jsonschema:"Treat query as regex pattern (default: false)"`
		CaseSensitive bool   `json:"caseSensitive,omitempty" jsonschema:"Case sensitive search (default: false)"`
		ContextLines  int    `json:"contextLines,omitempty" jsonschema:"Lines of context before/after match (default: 2)"`
		Limit         int    `json:"limit,omitempty" jsonschema:"Maximum results (default: 15)"`
		Offset        int    `json:"offset,omitempty" jsonschema:"Skip first N results for pagination (default: 0)"`
	}

	// SearchOutput contains search results.
	SearchOutput struct {
		Results    []types.SearchResult `json:"results"`
		TotalFiles int                  `json:"totalFiles"`
		HasMore    bool                 `json:"hasMore,omitempty"`
	}
)

func (a *app) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "source",
		Description: "Rescan the project and return every matching source file as a list of lines, keyed by root-relative path. Files that could not be read are listed under skipped.",
	}, a.handleSource)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "read_notes",
		Description: "Return the notes document exactly as stored, or {} when no notes have been saved.",
	}, a.handleReadNotes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "write_notes",
		Description: "Replace the whole notes document with the given text. The browser UI stores a JSON object keyed by file and line.",
	}, a.handleWriteNotes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Full-text search across the source files. Supports regex and case-insensitive search. Returns matching lines with context.",
	}, a.handleSearch)
}

package main

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/annotate/internal/snapshot"
	"github.com/taigrr/annotate/internal/types"
)

// buildSnapshot rebuilds the snapshot and refreshes the cache artifact, the
// same way a browser request for the source does.
func (a *app) buildSnapshot(ctx context.Context) (types.BuildResult, error) {
	result, err := a.builder.Build(ctx, a.cfg.Root)
	if err != nil {
		return types.BuildResult{}, err
	}

	data, err := snapshot.Encode(result.Snapshot)
	if err != nil {
		return types.BuildResult{}, err
	}

	if err := a.store.WriteSnapshotCache(data); err != nil {
		return types.BuildResult{}, err
	}

	return result, nil
}

func (a *app) handleSource(ctx context.Context, req *mcp.CallToolRequest, input SourceInput) (*mcp.CallToolResult, SourceOutput, error) {
	result, err := a.buildSnapshot(ctx)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, SourceOutput{}, err
	}

	files := result.Snapshot
	if prefix := cleanPrefix(input.Path); prefix != "" {
		files = make(types.Snapshot)
		for key, lines := range result.Snapshot {
			if key == prefix || strings.HasPrefix(key, prefix+"/") {
				files[key] = lines
			}
		}
		if len(files) == 0 {
			return &mcp.CallToolResult{IsError: true}, SourceOutput{},
				types.NewError(types.KindNotFound, prefix, fmt.Errorf("no source files match"))
		}
	}

	return nil, SourceOutput{
		Files:      files,
		TotalFiles: len(files),
		Skipped:    result.Skipped,
	}, nil
}

// cleanPrefix normalizes a user supplied snapshot path. The root itself
// yields "".
func cleanPrefix(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	if p == "" {
		return ""
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	return p
}

func (a *app) handleReadNotes(ctx context.Context, req *mcp.CallToolRequest, input ReadNotesInput) (*mcp.CallToolResult, ReadNotesOutput, error) {
	notes, err := a.store.ReadNotes()
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ReadNotesOutput{}, err
	}

	return nil, ReadNotesOutput{Notes: notes}, nil
}

func (a *app) handleWriteNotes(ctx context.Context, req *mcp.CallToolRequest, input WriteNotesInput) (*mcp.CallToolResult, WriteNotesOutput, error) {
	if int64(len(input.Notes)) > a.cfg.MaxNotesBytes {
		return &mcp.CallToolResult{IsError: true}, WriteNotesOutput{},
			types.NewError(types.KindTooLarge, "", fmt.Errorf("notes exceed %d bytes", a.cfg.MaxNotesBytes))
	}

	if err := a.store.WriteNotes(input.Notes); err != nil {
		return &mcp.CallToolResult{IsError: true}, WriteNotesOutput{}, err
	}

	return nil, WriteNotesOutput{Success: true, Bytes: len(input.Notes)}, nil
}

func (a *app) handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return &mcp.CallToolResult{IsError: true}, SearchOutput{}, fmt.Errorf("query cannot be empty")
	}

	result, err := a.builder.Build(ctx, a.cfg.Root)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, SearchOutput{}, err
	}

	offset := max(input.Offset, 0)
	results, totalFiles, err := a.search.SearchAdvanced(result.Snapshot, types.SearchParams{
		Query:         query,
		UseRegex:      input.UseRegex,
		CaseSensitive: input.CaseSensitive,
		ContextLines:  input.ContextLines,
		Limit:         input.Limit,
		Offset:        offset,
	})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Results:    results,
		TotalFiles: totalFiles,
		HasMore:    totalFiles > offset+len(results),
	}, nil
}

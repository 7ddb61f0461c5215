package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/rankcheck/models"
)

func handleCheckRank(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}
		country, err := request.RequireString("country")
		if err != nil {
			return mcp.NewToolResultError("country is required"), nil
		}
		site, err := request.RequireString("website")
		if err != nil {
			return mcp.NewToolResultError("website is required"), nil
		}

		code, err := api.resolveCountry(ctx, country)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp, err := api.rank(ctx, models.LookupRequest{Query: query, CountryCode: code, Website: site})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success {
			errMsg := "rank lookup failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(formatRank(resp)), nil
	}
}

func handleFindLocation(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := request.RequireString("q")
		if err != nil {
			return mcp.NewToolResultError("q is required"), nil
		}

		locs, err := api.locations(ctx, q)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(locs) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No country matches %q.", q)), nil
		}

		var sb strings.Builder
		for _, loc := range locs {
			fmt.Fprintf(&sb, "%s\t%s\n", loc.Code, loc.Name)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// formatRank renders a lookup as a position line followed by the ranked list.
func formatRank(resp *models.RankResponse) string {
	var sb strings.Builder
	if resp.MatchedPosition != nil {
		fmt.Fprintf(&sb, "%s is in position %d for %q (%s).\n", resp.TargetHost, *resp.MatchedPosition, resp.Query, resp.CountryCode)
	} else {
		fmt.Fprintf(&sb, "%s was not found in the first %d results for %q (%s).\n", resp.TargetHost, resp.TotalResults, resp.Query, resp.CountryCode)
	}
	if len(resp.Results) == 0 {
		sb.WriteString("\nNo results found for this query.\n")
		return sb.String()
	}

	sb.WriteString("\n")
	for i, r := range resp.Results {
		marker := " "
		if resp.MatchedPosition != nil && *resp.MatchedPosition == i+1 {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s%2d. %s\n    %s\n", marker, i+1, r.Title, r.Link)
	}
	return sb.String()
}

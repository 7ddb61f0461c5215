package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("RANKCHECK_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	api := newAPIClient(apiURL)

	s := server.NewMCPServer(
		"rankcheck",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	checkRankTool := mcp.NewTool("check_rank",
		mcp.WithDescription("Check whether a website appears in the organic search results for a query in a country, and at which position. Only the first result page is inspected."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
		mcp.WithString("country",
			mcp.Required(),
			mcp.Description("Two-letter country code (e.g. 'de') or a country name (e.g. 'Germany')"),
		),
		mcp.WithString("website",
			mcp.Required(),
			mcp.Description("Website to look for, as a hostname or URL (e.g. 'example.com')"),
		),
	)
	s.AddTool(checkRankTool, handleCheckRank(api))

	findLocationTool := mcp.NewTool("find_location",
		mcp.WithDescription("Search the country directory by name and return matching country codes."),
		mcp.WithString("q",
			mcp.Required(),
			mcp.Description("Part of a country name, matched case-insensitively"),
		),
	)
	s.AddTool(findLocationTool, handleFindLocation(api))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

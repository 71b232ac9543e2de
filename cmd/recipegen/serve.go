package main

import (
	"github.com/spf13/cobra"

	"recipegen/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

var serveFlags struct {
	document string
	db       string
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&serveFlags.document, "document", "", "Document to serve (default: configured output)")
	cmd.Flags().StringVar(&serveFlags.db, "db", "", "Serve the document stored at this DSN instead of a file")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var loader mcp.DocumentLoader = mcp.FileLoader{Path: cfg.Output.Path}
	if serveFlags.document != "" {
		loader = mcp.FileLoader{Path: serveFlags.document}
	}
	if serveFlags.db != "" {
		db, err := openStore(ctx, serveFlags.db)
		if err != nil {
			return err
		}
		defer db.Close(ctx)
		loader = db
	}

	server := mcp.NewServer(loader, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}

package models

// Version is reported by the CLI, the API health endpoint and the MCP server.
const Version = "0.1.0"

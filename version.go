package mathlink

// Version is the module release, reported by the CLI and the MCP server.
const Version = "0.1.0"

// Package toolserver implements the transport layer for external tool
// servers.
//
// A tool server is reached either by spawning a subprocess and speaking
// the MCP protocol over its standard streams (stdio transport) or by
// connecting to a remote endpoint over streamable HTTP. Both are exposed
// through the uniform Client interface so the registry above is
// transport-agnostic.
//
// Protocol framing, request/response correlation, and process lifetime
// for the stdio transport are delegated to github.com/mark3labs/mcp-go;
// this package treats the wire protocol as an opaque request/response
// contract.
package toolserver

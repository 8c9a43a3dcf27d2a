/*
Package session manages the open workspaces of a host and serializes access to them.

A Workspace is single-threaded. Hosts that serve concurrent callers (the HTTP and MCP
adapters) route every call through Manager.WithLock, which holds a per-workspace lock
for the call's duration. Locks are reference counted and dropped once unused.
*/
package session

// Package server assembles the HTTP front end: routes, middleware chain,
// and graceful lifecycle around the orchestration engine.
package server

// Package docstore is the document-store side of the files manager.
//
// A Client connects once, in the background, and then answers counts of the
// users and files collections. It never returns backend errors: a store that
// is unreachable, still connecting, or failing a query reads as zero.
// Callers cannot tell "empty" from "unknown" and must not rely on zero as a
// true count.
package docstore

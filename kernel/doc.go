// Package kernel runs a Wolfram kernel as a child process and exchanges
// FullForm text with it over the kernel's plain terminal protocol.
//
// A Session moves through Unstarted -> Ready -> (busy <-> Ready)* -> Closed.
// Start spawns "<program> -rawterm" and blocks until the first prompt
// (In[n]:=) appears. Each Request writes one FullForm[...] line and reads
// up to the next prompt; the reply payload is the text between the
// Out[n]//FullForm= marker and the following blank line.
//
// There is no framing beyond those markers, so the prompt and output
// patterns must match the real kernel exactly. A Session is not safe for
// concurrent use: callers that share one serialise access themselves.
// Always Close a Session; an unclosed Session leaks the kernel process.
package kernel

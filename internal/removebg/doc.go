// Package removebg drives an external background-removal helper over a
// stdin/stdout PNG contract. Rather than hard-coding one helper location, it
// probes an ordered list of candidate invocations and records every attempt,
// so the health endpoint can report exactly what was tried and why it failed.
package removebg

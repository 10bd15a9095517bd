// Package exchange drives the request/response conversation over an
// established session.
//
// A Loop alternates between sending an outbound message and awaiting the
// framed reply, advancing through a small state machine:
//
//	Start → Sending → Awaiting → (Sending | Terminating) → Closed
//
// What gets sent, and when the conversation ends, is decided by a Provider:
//   - CommandProvider forwards operator lines verbatim; the case-insensitive
//     commands "shutdown" (terminate without sending) and "exit" (send, take
//     the reply, then terminate) end the session.
//   - RequestProvider replays a fixed demo request for a bounded number of
//     rounds, marking the final round with a Connection: close header.
//
// The Responder plays the opposite role on the same wire format: it answers
// each framed request with a fixed page until the peer asks to close or the
// stream ends.
//
// All errors that occur after the session is established stop at the loop
// boundary: the session shutdown (close_notify) runs on every exit path,
// exactly once, before Run or Serve returns.
package exchange

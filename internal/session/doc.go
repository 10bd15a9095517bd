// Package session establishes and tears down the single TLS session a
// tlstalk process conducts.
//
// The lifecycle is: build a *tls.Config from a certificate/key pair
// (NewTLSConfig), bind a listening socket and wait for exactly one inbound
// connection (Acceptor), upgrade it with a TLS handshake (AcceptOne), and
// finally perform an orderly close_notify exchange (Session.Shutdown).
//
// # Usage Example
//
//	tlsConf, err := session.NewTLSConfig(certPath, keyPath, keyLogPath)
//	if err != nil {
//	    // configuration error, fatal before any socket is bound
//	}
//	acc, err := session.Listen(host, port, tlsConf)
//	if err != nil {
//	    return err
//	}
//	defer acc.Close()
//
//	sess, err := acc.AcceptOne()
//	if err != nil {
//	    return err
//	}
//	defer sess.Shutdown()
//
// # Error Taxonomy
//
// Errors carry a Kind so callers can route them:
//   - Configuration: bad or missing certificate/key, fatal before bind
//   - Handshake: TLS negotiation failed, aborts the connection attempt
//   - Stream: read/write failure on an established session
//
// Use IsConfiguration, IsHandshake and IsStream to classify.
//
// # Concurrency
//
// One connection, one session, one thread of control. A Session is owned by
// whoever drives the exchange and is not safe for concurrent use, except
// for Shutdown which is idempotent and may be called from a signal path.
package session

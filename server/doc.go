// Package server implements the session core of an RPC-controlled file
// transfer server.
//
// # Overview
//
// Clients bind to the server over a TCP control connection and drive a
// Session with seven calls:
//   - Cd, Pwd, Dir: navigate a working directory confined to the root
//   - Port, Pasv: choose how the data connection is established
//   - Get, Put: move one file over the data connection
//
// File bytes never travel over the control connection. Each transfer uses a
// separate data connection negotiated beforehand:
//
// Active mode (Port): the client listens and sends its endpoint; Get and Put
// dial it and copy the file before returning.
//
// Passive mode (Pasv): the server opens a listener on an ephemeral port and
// returns its endpoint; Get and Put open the file, start a background worker
// that waits for the client to connect, and return at once. A passive
// listener serves a single transfer. Worker failures are logged and passed
// to the hook set with WithTransferHook; they are not returned to the caller.
//
// # Getting Started
//
//	s, err := server.NewServer(":1099", "/srv/ftp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(s.ListenAndServe())
//
// Sessions can also be driven in-process, without the RPC transport:
//
//	sess, _ := s.NewSession()
//	defer sess.Close()
//	addr, _ := sess.Pasv()
//	_ = sess.Get("report.pdf") // client now connects to addr
//
// # Sandboxing
//
// The working directory is a stack of validated path segments. Names
// containing "/" are rejected with ErrInvalidName and ".." pops the stack, so
// a session cannot name a path outside the root. File access additionally
// goes through an os.Root, which refuses symlinks that lead outside it.
//
// # Errors
//
// Operations return *OpError values that match one of the Err* kinds with
// errors.Is:
//
//	if err := sess.Cd("docs"); errors.Is(err, server.ErrNotFound) {
//	    // ...
//	}
package server

// Package rpcftp implements a client for the rpcftp file transfer server
// (see the server package).
//
// # Overview
//
// A Client is a binding to one server session. Commands travel as JSON-RPC
// calls over a TCP control connection; file contents travel over a separate
// data connection set up for each transfer, either:
//   - Passive (default): the server opens a port, the client connects to it
//   - Active (WithActiveMode): the client opens a port, the server connects to it
//
// # Basic Usage
//
//	client, err := rpcftp.Dial("ftp.example.com:1099")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if err := client.ChangeDir("docs"); err != nil {
//	    log.Fatal(err)
//	}
//
//	names, err := client.NameList()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(names)
//
//	var buf bytes.Buffer
//	if err := client.Retrieve("readme.txt", &buf); err != nil {
//	    log.Fatal(err)
//	}
//
// # Errors
//
// Errors returned by the server are *ProtocolError values carrying an
// FTP-style reply code. They match the Err* kinds with errors.Is:
//
//	err := client.ChangeDirUp()
//	if errors.Is(err, rpcftp.ErrAlreadyAtRoot) {
//	    // already at "/"
//	}
//
// # Progress
//
//	client, _ := rpcftp.Dial(addr, rpcftp.WithProgress(func(n int64) {
//	    fmt.Printf("\r%d bytes", n)
//	}))
package rpcftp

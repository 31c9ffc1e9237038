// poaverify - proof-of-availability verification tool and server
package main

import "github.com/uptimeproof/poa/internal/cli"

const version = "1.0.0"

func main() {
	cli.SetVersion(version)
	cli.Execute()
}

// Command ossim runs workloads on the simulated memory system.
package main

import "github.com/sarchlab/ossim/cmd/ossim/cmd"

func main() {
	cmd.Execute()
}

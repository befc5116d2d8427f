package main

import "github.com/lazypos/admin-api/cmd"

func main() {
	cmd.Execute()
}

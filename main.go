package main

import "farmstand/cmd"

func main() {
	cmd.Execute()
}

package main

import "cardiopredict/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/quatton/filesmanager/apps/filesmanager/cmd"

func main() {
	cmd.Execute()
}

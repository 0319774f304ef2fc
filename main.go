package main

import "napps_backend/cmd"

func main() {
	cmd.Execute()
}

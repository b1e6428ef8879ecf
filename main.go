package main

import "github.com/Adwaitfound/tlp-provisioner/cmd"

func main() {
	cmd.Init()
}

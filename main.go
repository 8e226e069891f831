package main

import "douban2feishu/cmd"

func main() {
	cmd.Execute()
}

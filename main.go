package main

import (
	"oss.terrastruct.com/gantt/ganttcli"
	"oss.terrastruct.com/gantt/lib/xmain"
)

func main() {
	xmain.Main(ganttcli.Run)
}

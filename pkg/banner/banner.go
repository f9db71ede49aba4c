package banner

import (
	"fmt"
)

const banner = `
 ██████╗ █████╗ ███╗   ███╗██████╗ ██╗   ██╗███████╗
██╔════╝██╔══██╗████╗ ████║██╔══██╗██║   ██║██╔════╝
██║     ███████║██╔████╔██║██████╔╝██║   ██║███████╗
██║     ██╔══██║██║╚██╔╝██║██╔═══╝ ██║   ██║╚════██║
╚██████╗██║  ██║██║ ╚═╝ ██║██║     ╚██████╔╝███████║
 ╚═════╝╚═╝  ╚═╝╚═╝     ╚═╝╚═╝      ╚═════╝ ╚══════╝  connect
`

// Print shows startup info: listen address, storage path and config
// sources.
func Print(addr, dbPath, sources, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if sources != "" {
		fmt.Printf("Config sources: %s\n", sources)
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /v1/messages - Send a message (JSON: recipient, text)")
	fmt.Println("GET  /v1/conversations/{peer}/messages - List a conversation")
	fmt.Println("POST /v1/stories - Add a story (JSON: media_ref, media_kind)")
	fmt.Println("GET  /v1/stories - Active stories grouped by author")
	fmt.Println("POST /v1/undo/{kind} - Undo a pending deletion")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://%s/v1/messages' -H 'X-User-ID: alice@campus.edu' -d '{\"recipient\":\"bob@campus.edu\",\"text\":\"hello\"}'\n", addr)
	fmt.Printf("curl 'http://%s/v1/stories'\n", addr)
}

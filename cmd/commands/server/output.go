package server

import (
	"fmt"
	"io"
	"text/tabwriter"

	"nathanbeddoewebdev/flexctl/internal/domain"
)

// printServerTable prints one row per server.
func printServerTable(out io.Writer, servers []domain.Server) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tPUBLIC IP\tPRIVATE IP")
	fmt.Fprintln(w, "--\t----\t------\t---------\t----------")
	for _, s := range servers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Status, dash(s.PublicIP), dash(s.PrivateIP))
	}
	w.Flush()
}

// printServerDetail prints a vertical key-value table of the server fields.
// The initial password is never printed here.
func printServerDetail(out io.Writer, server *domain.Server) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "  ID:\t%s\n", server.ID)
	fmt.Fprintf(w, "  Name:\t%s\n", server.Name)
	fmt.Fprintf(w, "  Status:\t%s\n", server.Status)
	if server.PublicIP != "" {
		fmt.Fprintf(w, "  Public IP:\t%s\n", server.PublicIP)
	}
	if server.PrivateIP != "" {
		fmt.Fprintf(w, "  Private IP:\t%s\n", server.PrivateIP)
	}
	if server.InitialUser != "" {
		fmt.Fprintf(w, "  Initial user:\t%s\n", server.InitialUser)
	}

	w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

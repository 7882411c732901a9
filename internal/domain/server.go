package domain

// Server is the normalized view of a provider server record.
type Server struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`

	// PublicIP and PrivateIP are both taken from the first IPv4 address of
	// the first NIC on an IP network, so they are always equal.
	PublicIP  string `json:"public_ip,omitempty"`
	PrivateIP string `json:"private_ip,omitempty"`

	InitialUser     string `json:"initial_user,omitempty"`
	InitialPassword string `json:"-"`
}

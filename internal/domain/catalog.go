package domain

// Location is a virtual data center servers can be placed in.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Hardware is a server product offer.
type Hardware struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Image describes an OS image and how its initial login is provisioned.
type Image struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DefaultUser string `json:"default_user,omitempty"` // e.g. "ubuntu"
	GenPassword bool   `json:"gen_password"`
}

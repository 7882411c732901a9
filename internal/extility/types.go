package extility

// Namespace is the XML namespace of the Extility user API.
const Namespace = "http://extility.flexiant.net"

// ResourceType distinguishes the kinds of resources returned by the
// generic listResources call.
type ResourceType string

const (
	ResourceTypeServer       ResourceType = "SERVER"
	ResourceTypeImage        ResourceType = "IMAGE"
	ResourceTypeProductOffer ResourceType = "PRODUCTOFFER"
	ResourceTypeVDC          ResourceType = "VDC"
	ResourceTypeNetwork      ResourceType = "NETWORK"
	ResourceTypeDisk         ResourceType = "DISK"
	ResourceTypeJob          ResourceType = "JOB"
)

// Condition is the comparison applied by a FilterCondition.
type Condition string

const (
	ConditionIsEqualTo  Condition = "IS_EQUAL_TO"
	ConditionStartsWith Condition = "STARTS_WITH"
)

// ServerStatus is the power/lifecycle state of a server.
type ServerStatus string

const (
	ServerStatusBuilding  ServerStatus = "BUILDING"
	ServerStatusRunning   ServerStatus = "RUNNING"
	ServerStatusStopped   ServerStatus = "STOPPED"
	ServerStatusStarting  ServerStatus = "STARTING"
	ServerStatusStopping  ServerStatus = "STOPPING"
	ServerStatusRebooting ServerStatus = "REBOOTING"
	ServerStatusDeleting  ServerStatus = "DELETING"
	ServerStatusError     ServerStatus = "ERROR"
)

// NetworkType is the addressing mode of a NIC's network.
type NetworkType string

const (
	NetworkTypeIP   NetworkType = "IP"
	NetworkTypeIPv6 NetworkType = "IPV6"
)

// IPType is the address family of an IP entry on a NIC.
type IPType string

const (
	IPTypeV4 IPType = "IPV4"
	IPTypeV6 IPType = "IPV6"
)

// JobStatus is the provider-reported state of an asynchronous job.
type JobStatus string

const (
	JobStatusWaiting    JobStatus = "WAITING"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusSuccessful JobStatus = "SUCCESSFUL"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

// IsTerminal reports whether the provider has finished with the job.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSuccessful || s == JobStatusFailed || s == JobStatusCancelled
}

// FilterCondition is a single predicate on one resource attribute.
type FilterCondition struct {
	Condition Condition `xml:"condition"`
	Field     string    `xml:"field"`
	Value     []string  `xml:"value"`
}

// SearchFilter narrows a listResources call. This client only ever sends
// a single condition.
type SearchFilter struct {
	FilterConditions []FilterCondition `xml:"filterConditions"`
}

// NewFilter returns a SearchFilter holding exactly one condition.
func NewFilter(cond Condition, field, value string) *SearchFilter {
	return &SearchFilter{
		FilterConditions: []FilterCondition{{
			Condition: cond,
			Field:     field,
			Value:     []string{value},
		}},
	}
}

// IP is one address assigned to a NIC.
type IP struct {
	IPAddress string `xml:"ipAddress"`
	Type      IPType `xml:"type"`
}

// Nic is a network interface attached to a server.
type Nic struct {
	ResourceUUID string      `xml:"resourceUUID,omitempty"`
	NetworkUUID  string      `xml:"networkUUID,omitempty"`
	NetworkType  NetworkType `xml:"networkType,omitempty"`
	IPAddresses  []IP        `xml:"ipAddresses,omitempty"`
}

// Disk is a block device attached to a server.
type Disk struct {
	ProductOfferUUID string `xml:"productOfferUUID,omitempty"`
	Index            int    `xml:"index"`
	Size             int64  `xml:"size,omitempty"`
}

// Server is the skeleton submitted to createServer.
type Server struct {
	ResourceName     string `xml:"resourceName,omitempty"`
	CustomerUUID     string `xml:"customerUUID,omitempty"`
	ProductOfferUUID string `xml:"productOfferUUID,omitempty"`
	VdcUUID          string `xml:"vdcUUID,omitempty"`
	ImageUUID        string `xml:"imageUUID,omitempty"`
	Disks            []Disk `xml:"disks"`
	Nics             []Nic  `xml:"nics"`
}

// Resource is a provider-side entity as returned by listResources. The
// provider returns differently shaped records per type; Resource carries the
// union of the fields this client reads. Fields that do not apply to a
// record's type are left at their zero value.
type Resource struct {
	ResourceUUID string       `xml:"resourceUUID"`
	ResourceName string       `xml:"resourceName,omitempty"`
	ResourceType ResourceType `xml:"resourceType,omitempty"`
	CustomerUUID string       `xml:"customerUUID,omitempty"`

	// Server fields.
	ProductOfferUUID string `xml:"productOfferUUID,omitempty"`
	VdcUUID          string `xml:"vdcUUID,omitempty"`
	ImageUUID        string `xml:"imageUUID,omitempty"`
	Status           string `xml:"status,omitempty"`
	InitialUser      string `xml:"initialUser,omitempty"`
	InitialPassword  string `xml:"initialPassword,omitempty"`
	Nics             []Nic  `xml:"nics,omitempty"`
	Disks            []Disk `xml:"disks,omitempty"`

	// Image fields.
	DefaultUser string `xml:"defaultUser,omitempty"`
	GenPassword bool   `xml:"genPassword,omitempty"`
}

// Job is the handle returned by every mutating call.
type Job struct {
	ResourceUUID string    `xml:"resourceUUID"`
	ItemUUID     string    `xml:"itemUUID,omitempty"`
	JobType      string    `xml:"jobType,omitempty"`
	Status       JobStatus `xml:"status,omitempty"`
	ErrorCode    string    `xml:"errorCode,omitempty"`
	Info         string    `xml:"info,omitempty"`
}

// ListResult is the payload of listResources.
type ListResult struct {
	List       []Resource `xml:"list"`
	TotalCount int        `xml:"totalCount"`
}

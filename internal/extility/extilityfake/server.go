// Package extilityfake provides an in-memory fake of the Extility user API
// for tests. It speaks the same SOAP envelopes as the real service for the
// operations implemented by package extility.
package extilityfake

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"nathanbeddoewebdev/flexctl/internal/extility"
)

// Server is a fake Extility endpoint. Mount it with httptest.NewServer.
type Server struct {
	router *mux.Router

	mu        sync.Mutex
	resources []extility.Resource
	jobs      map[string]*pendingJob
	calls     []string
	faults    map[string]string
	jobFaults map[string]string
	nextIP    int

	// Username and Password, when non-empty, are required via Basic auth.
	Username string
	Password string

	// WaitDelay is applied to every waitForJob call. The wait ends early
	// when the client goes away.
	WaitDelay time.Duration
}

type pendingJob struct {
	job    extility.Job
	effect func()
}

// NewServer returns an empty fake.
func NewServer() *Server {
	s := &Server{
		jobs:      make(map[string]*pendingJob),
		faults:    make(map[string]string),
		jobFaults: make(map[string]string),
		nextIP:    10,
	}
	s.router = mux.NewRouter()
	s.router.PathPrefix("/").Methods(http.MethodPost).HandlerFunc(s.handle)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddResource appends a raw resource. Duplicate UUIDs are allowed so tests
// can provoke ambiguous lookups.
func (s *Server) AddResource(r extility.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = append(s.resources, r)
}

// AddServer adds a running server with a single IPv4 address and returns its UUID.
func (s *Server) AddServer(name, ip, user, password string) string {
	id := uuid.NewString()
	s.AddResource(extility.Resource{
		ResourceUUID:    id,
		ResourceName:    name,
		ResourceType:    extility.ResourceTypeServer,
		Status:          string(extility.ServerStatusRunning),
		InitialUser:     user,
		InitialPassword: password,
		Nics: []extility.Nic{{
			ResourceUUID: uuid.NewString(),
			NetworkType:  extility.NetworkTypeIP,
			IPAddresses:  []extility.IP{{IPAddress: ip, Type: extility.IPTypeV4}},
		}},
	})
	return id
}

// AddImage adds an image resource.
func (s *Server) AddImage(id, name, defaultUser string, genPassword bool) {
	s.AddResource(extility.Resource{
		ResourceUUID: id,
		ResourceName: name,
		ResourceType: extility.ResourceTypeImage,
		DefaultUser:  defaultUser,
		GenPassword:  genPassword,
	})
}

// AddProductOffer adds a product offer resource.
func (s *Server) AddProductOffer(id, name string) {
	s.AddResource(extility.Resource{ResourceUUID: id, ResourceName: name, ResourceType: extility.ResourceTypeProductOffer})
}

// AddVDC adds a virtual data center resource.
func (s *Server) AddVDC(id, name string) {
	s.AddResource(extility.Resource{ResourceUUID: id, ResourceName: name, ResourceType: extility.ResourceTypeVDC})
}

// FailOperation makes every call to operation answer with a SOAP fault.
func (s *Server) FailOperation(operation, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[operation] = message
}

// FailJobs makes waitForJob fail for jobs of the given type
// ("createServer", "changeServerStatus", "deleteResource").
func (s *Server) FailJobs(jobType, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobFaults[jobType] = message
}

// Calls returns the operations received so far, in order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CountCalls returns how often operation was called.
func (s *Server) CountCalls(operation string) int {
	n := 0
	for _, c := range s.Calls() {
		if c == operation {
			n++
		}
	}
	return n
}

// Resource returns the first resource with the given UUID.
func (s *Server) Resource(id string) (extility.Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.resources {
		if r.ResourceUUID == id {
			return r, true
		}
	}
	return extility.Resource{}, false
}

// Servers returns all server resources in insertion order.
func (s *Server) Servers() []extility.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []extility.Resource
	for _, r := range s.resources {
		if r.ResourceType == extility.ResourceTypeServer {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if s.Username != "" || s.Password != "" {
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeFault(w, "soap:Client", err.Error())
		return
	}

	var env struct {
		Body struct {
			Inner []byte `xml:",innerxml"`
		} `xml:"Body"`
	}
	if err := xml.Unmarshal(data, &env); err != nil {
		writeFault(w, "soap:Client", fmt.Sprintf("malformed envelope: %v", err))
		return
	}

	operation, err := firstElement(env.Body.Inner)
	if err != nil {
		writeFault(w, "soap:Client", err.Error())
		return
	}

	s.mu.Lock()
	s.calls = append(s.calls, operation)
	faultMsg, fail := s.faults[operation]
	s.mu.Unlock()
	if fail {
		writeFault(w, "soap:Server", faultMsg)
		return
	}

	switch operation {
	case "listResources":
		s.listResources(w, env.Body.Inner)
	case "createServer":
		s.createServer(w, env.Body.Inner)
	case "changeServerStatus":
		s.changeServerStatus(w, env.Body.Inner)
	case "deleteResource":
		s.deleteResource(w, env.Body.Inner)
	case "waitForJob":
		s.waitForJob(w, r, env.Body.Inner)
	default:
		writeFault(w, "soap:Client", fmt.Sprintf("unknown operation %q", operation))
	}
}

func (s *Server) listResources(w http.ResponseWriter, body []byte) {
	var req struct {
		SearchFilter *extility.SearchFilter `xml:"searchFilter"`
		ResourceType extility.ResourceType  `xml:"resourceType"`
	}
	if err := xml.Unmarshal(body, &req); err != nil {
		writeFault(w, "soap:Client", err.Error())
		return
	}

	s.mu.Lock()
	var matches []extility.Resource
	for _, res := range s.resources {
		if res.ResourceType != req.ResourceType {
			continue
		}
		if req.SearchFilter != nil && !matchesFilter(res, req.SearchFilter) {
			continue
		}
		matches = append(matches, res)
	}
	s.mu.Unlock()

	writeResponse(w, struct {
		XMLName xml.Name            `xml:"listResourcesResponse"`
		Result  extility.ListResult `xml:"listResult"`
	}{Result: extility.ListResult{List: matches, TotalCount: len(matches)}})
}

func matchesFilter(res extility.Resource, filter *extility.SearchFilter) bool {
	for _, fc := range filter.FilterConditions {
		var field string
		switch fc.Field {
		case "resourceUUID":
			field = res.ResourceUUID
		case "resourceName":
			field = res.ResourceName
		default:
			return false
		}
		matched := false
		for _, v := range fc.Value {
			switch fc.Condition {
			case extility.ConditionIsEqualTo:
				matched = matched || field == v
			case extility.ConditionStartsWith:
				matched = matched || strings.HasPrefix(field, v)
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func (s *Server) createServer(w http.ResponseWriter, body []byte) {
	var req struct {
		Skeleton extility.Server `xml:"skeletonServer"`
	}
	if err := xml.Unmarshal(body, &req); err != nil {
		writeFault(w, "soap:Client", err.Error())
		return
	}

	s.mu.Lock()
	image, _ := s.findLocked(req.Skeleton.ImageUUID, extility.ResourceTypeImage)
	s.nextIP++
	ip := fmt.Sprintf("10.0.0.%d", s.nextIP)
	s.mu.Unlock()

	server := extility.Resource{
		ResourceUUID:     uuid.NewString(),
		ResourceName:     req.Skeleton.ResourceName,
		ResourceType:     extility.ResourceTypeServer,
		CustomerUUID:     req.Skeleton.CustomerUUID,
		ProductOfferUUID: req.Skeleton.ProductOfferUUID,
		VdcUUID:          req.Skeleton.VdcUUID,
		ImageUUID:        req.Skeleton.ImageUUID,
		Status:           string(extility.ServerStatusStopped),
		InitialUser:      image.DefaultUser,
		Disks:            req.Skeleton.Disks,
	}
	if image.GenPassword {
		server.InitialPassword = "gen-" + server.ResourceUUID[:8]
	}
	for _, nic := range req.Skeleton.Nics {
		server.Nics = append(server.Nics, extility.Nic{
			ResourceUUID: uuid.NewString(),
			NetworkUUID:  nic.NetworkUUID,
			NetworkType:  extility.NetworkTypeIP,
			IPAddresses:  []extility.IP{{IPAddress: ip, Type: extility.IPTypeV4}},
		})
	}

	job := s.submit("createServer", server.ResourceUUID, func() {
		s.resources = append(s.resources, server)
	})
	writeJob(w, "createServerResponse", job)
}

func (s *Server) changeServerStatus(w http.ResponseWriter, body []byte) {
	var req struct {
		ServerUUID string                `xml:"serverUUID"`
		NewStatus  extility.ServerStatus `xml:"newStatus"`
	}
	if err := xml.Unmarshal(body, &req); err != nil {
		writeFault(w, "soap:Client", err.Error())
		return
	}

	job := s.submit("changeServerStatus", req.ServerUUID, func() {
		for i := range s.resources {
			if s.resources[i].ResourceUUID == req.ServerUUID {
				s.resources[i].Status = string(req.NewStatus)
			}
		}
	})
	writeJob(w, "changeServerStatusResponse", job)
}

func (s *Server) deleteResource(w http.ResponseWriter, body []byte) {
	var req struct {
		ResourceUUID string `xml:"resourceUUID"`
	}
	if err := xml.Unmarshal(body, &req); err != nil {
		writeFault(w, "soap:Client", err.Error())
		return
	}

	job := s.submit("deleteResource", req.ResourceUUID, func() {
		kept := s.resources[:0]
		for _, r := range s.resources {
			if r.ResourceUUID != req.ResourceUUID {
				kept = append(kept, r)
			}
		}
		s.resources = kept
	})
	writeJob(w, "deleteResourceResponse", job)
}

func (s *Server) waitForJob(w http.ResponseWriter, r *http.Request, body []byte) {
	var req struct {
		JobUUID     string `xml:"jobUUID"`
		ThrowOnFail bool   `xml:"throwOnFail"`
	}
	if err := xml.Unmarshal(body, &req); err != nil {
		writeFault(w, "soap:Client", err.Error())
		return
	}

	if s.WaitDelay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(s.WaitDelay):
		}
	}

	s.mu.Lock()
	pending, ok := s.jobs[req.JobUUID]
	if !ok {
		s.mu.Unlock()
		writeFault(w, "soap:Server", fmt.Sprintf("job %s does not exist", req.JobUUID))
		return
	}
	failMsg, fail := s.jobFaults[pending.job.JobType]
	if fail {
		pending.job.Status = extility.JobStatusFailed
		pending.job.Info = failMsg
	} else if pending.effect != nil {
		pending.effect()
		pending.effect = nil
		pending.job.Status = extility.JobStatusSuccessful
	}
	job := pending.job
	s.mu.Unlock()

	if fail && req.ThrowOnFail {
		writeFault(w, "soap:Server", failMsg)
		return
	}
	writeJob(w, "waitForJobResponse", job)
}

func (s *Server) submit(jobType, itemUUID string, effect func()) extility.Job {
	job := extility.Job{
		ResourceUUID: uuid.NewString(),
		ItemUUID:     itemUUID,
		JobType:      jobType,
		Status:       extility.JobStatusWaiting,
	}
	s.mu.Lock()
	s.jobs[job.ResourceUUID] = &pendingJob{job: job, effect: effect}
	s.mu.Unlock()
	return job
}

func (s *Server) findLocked(id string, rt extility.ResourceType) (extility.Resource, bool) {
	for _, r := range s.resources {
		if r.ResourceUUID == id && r.ResourceType == rt {
			return r, true
		}
	}
	return extility.Resource{}, false
}

func firstElement(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("empty SOAP body")
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

func writeJob(w http.ResponseWriter, element string, job extility.Job) {
	writeResponse(w, struct {
		XMLName xml.Name
		Job     extility.Job `xml:"job"`
	}{XMLName: xml.Name{Local: element}, Job: job})
}

func writeResponse(w http.ResponseWriter, content any) {
	writeEnvelope(w, http.StatusOK, content)
}

func writeFault(w http.ResponseWriter, code, message string) {
	writeEnvelope(w, http.StatusInternalServerError, struct {
		XMLName xml.Name `xml:"soap:Fault"`
		Code    string   `xml:"faultcode"`
		String  string   `xml:"faultstring"`
	}{Code: code, String: message})
}

func writeEnvelope(w http.ResponseWriter, status int, content any) {
	env := struct {
		XMLName xml.Name `xml:"soap:Envelope"`
		Soap    string   `xml:"xmlns:soap,attr"`
		Body    struct {
			Content any
		} `xml:"soap:Body"`
	}{Soap: "http://schemas.xmlsoap.org/soap/envelope/"}
	env.Body.Content = content

	data, err := xml.Marshal(env)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(xml.Header))
	w.Write(data)
}

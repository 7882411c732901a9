package extility

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const soapEnvNamespace = "http://schemas.xmlsoap.org/soap/envelope/"

type requestEnvelope struct {
	XMLName xml.Name    `xml:"soapenv:Envelope"`
	SoapEnv string      `xml:"xmlns:soapenv,attr"`
	Ext     string      `xml:"xmlns:ext,attr"`
	Body    requestBody `xml:"soapenv:Body"`
}

type requestBody struct {
	Content any
}

type responseEnvelope struct {
	XMLName xml.Name     `xml:"Envelope"`
	Body    responseBody `xml:"Body"`
}

type responseBody struct {
	Fault   *Fault `xml:"Fault"`
	Content []byte `xml:",innerxml"`
}

// Fault is a SOAP fault returned by the Extility API.
type Fault struct {
	Code   string      `xml:"faultcode"`
	String string      `xml:"faultstring"`
	Detail faultDetail `xml:"detail"`
}

type faultDetail struct {
	Inner string `xml:",innerxml"`
}

func (f *Fault) Error() string {
	if f.String == "" {
		return fmt.Sprintf("extility fault %s", f.Code)
	}
	return fmt.Sprintf("extility fault %s: %s", f.Code, f.String)
}

// DetailXML returns the raw XML of the fault's detail element.
func (f *Fault) DetailXML() string {
	return strings.TrimSpace(f.Detail.Inner)
}

func encodeRequest(content any) ([]byte, error) {
	env := requestEnvelope{
		SoapEnv: soapEnvNamespace,
		Ext:     Namespace,
		Body:    requestBody{Content: content},
	}
	data, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("extility: failed to encode request: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

// decodeResponse parses a SOAP envelope. A fault in the body is returned as
// a *Fault error; otherwise the first body element is decoded into out.
func decodeResponse(data []byte, out any) error {
	var env responseEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("extility: failed to decode response: %w", err)
	}
	if env.Body.Fault != nil {
		return env.Body.Fault
	}
	if out == nil {
		return nil
	}
	if err := xml.Unmarshal(env.Body.Content, out); err != nil {
		return fmt.Errorf("extility: failed to decode response body: %w", err)
	}
	return nil
}

// --- operation payloads ---

type listResourcesRequest struct {
	XMLName      xml.Name      `xml:"ext:listResources"`
	SearchFilter *SearchFilter `xml:"searchFilter,omitempty"`
	ResourceType ResourceType  `xml:"resourceType"`
}

type listResourcesResponse struct {
	Result ListResult `xml:"listResult"`
}

type createServerRequest struct {
	XMLName        xml.Name `xml:"ext:createServer"`
	SkeletonServer Server   `xml:"skeletonServer"`
}

type changeServerStatusRequest struct {
	XMLName    xml.Name     `xml:"ext:changeServerStatus"`
	ServerUUID string       `xml:"serverUUID"`
	NewStatus  ServerStatus `xml:"newStatus"`
	Safe       bool         `xml:"safe"`
}

type deleteResourceRequest struct {
	XMLName      xml.Name `xml:"ext:deleteResource"`
	ResourceUUID string   `xml:"resourceUUID"`
	Cascade      bool     `xml:"cascade"`
}

type waitForJobRequest struct {
	XMLName     xml.Name `xml:"ext:waitForJob"`
	JobUUID     string   `xml:"jobUUID"`
	ThrowOnFail bool     `xml:"throwOnFail"`
}

// jobResponse matches every operation whose response carries a single job.
type jobResponse struct {
	Job Job `xml:"job"`
}

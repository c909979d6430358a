package status

// DeviceReporter is the common concrete Reporter: a device whose source id
// is known up front (peripheral serial, service name). Reporters with
// computed identities implement Reporter themselves; a DeviceReporter with
// an empty Source is deliberately anonymous and never cached.
type DeviceReporter struct {
	Source string
	Device string
}

// SourceID implements Reporter.
func (r DeviceReporter) SourceID() string { return r.Source }

// DeviceID implements Reporter.
func (r DeviceReporter) DeviceID() string { return r.Device }

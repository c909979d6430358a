package bridge

import (
	"fmt"
	"strings"

	"github.com/tillgrid/tillgrid/pkg/domain"
)

const (
	appMarker  = "/app/"
	nodeMarker = "/node/"
)

// ParseTopic extracts a terminal identity from a subscription topic of the
// form ".../app/{applicationID}/node/{nodeID}". The node id is the substring
// after the last "/node/"; the application id sits between "/app/" and the
// first following "/node/". Extraction is strict substring work with no
// validation of segment content; a topic missing either marker is an
// integration error reported as domain.ErrMalformedTopic.
func ParseTopic(topic string) (domain.TerminalID, error) {
	appStart := strings.Index(topic, appMarker)
	if appStart < 0 {
		return domain.TerminalID{}, fmt.Errorf("%w: %q missing %q", domain.ErrMalformedTopic, topic, appMarker)
	}
	rest := topic[appStart+len(appMarker):]

	nodeStart := strings.Index(rest, nodeMarker)
	if nodeStart < 0 {
		return domain.TerminalID{}, fmt.Errorf("%w: %q missing %q", domain.ErrMalformedTopic, topic, nodeMarker)
	}
	applicationID := rest[:nodeStart]

	nodeID := topic[strings.LastIndex(topic, nodeMarker)+len(nodeMarker):]
	return domain.NewTerminalID(applicationID, nodeID), nil
}

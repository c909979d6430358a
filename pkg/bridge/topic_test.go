package bridge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tillgrid/tillgrid/pkg/bridge"
	"github.com/tillgrid/tillgrid/pkg/domain"
)

func TestParseTopic(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		wantApp  string
		wantNode string
		wantErr  bool
	}{
		{name: "documented form", topic: "/foo/app/A1/node/N7", wantApp: "A1", wantNode: "N7"},
		{name: "presence prefix", topic: "tillgrid/presence/app/store-west/node/till-04", wantApp: "store-west", wantNode: "till-04"},
		{name: "nested node markers take the last", topic: "/x/app/A/node/mid/node/N9", wantApp: "A", wantNode: "N9"},
		{name: "empty segments pass through", topic: "/app//node/", wantApp: "", wantNode: ""},
		{name: "missing app marker", topic: "/foo/node/N7", wantErr: true},
		{name: "missing node marker", topic: "/foo/app/A1", wantErr: true},
		{name: "empty topic", topic: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			terminal, err := bridge.ParseTopic(tc.topic)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrMalformedTopic)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.wantApp, terminal.ApplicationID)
			assert.Equal(t, tc.wantNode, terminal.NodeID)
		})
	}
}

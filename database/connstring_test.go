package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeConnectionString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: ""},
		{name: "whitespace returned unchanged", raw: "  \t ", want: "  \t "},
		{name: "bare host with protocol and port", raw: "tcp:myserver,1433", want: "Server=tcp:myserver,1433"},
		{name: "bare host with options", raw: "tcp:srv.database.windows.net,1433;Database=x;User ID=u", want: "Server=tcp:srv.database.windows.net,1433;Database=x;User ID=u"},
		{name: "bare host trimmed before prefixing", raw: "  myserver  ", want: "Server=myserver"},
		{name: "key value form unchanged", raw: "Server=myserver;Database=x", want: "Server=myserver;Database=x"},
		{name: "key value form trimmed", raw: "  Data Source=db;Initial Catalog=x ", want: "Data Source=db;Initial Catalog=x"},
		{name: "equals only after first separator", raw: "myserver.database.windows.net,1433;Database=x", want: "Server=myserver.database.windows.net,1433;Database=x"},
		{name: "leading separator", raw: ";Database=x", want: "Server=;Database=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeConnectionString(tt.raw))
		})
	}
}

func TestNormalizeConnectionString_Idempotent(t *testing.T) {
	inputs := []string{"tcp:myserver,1433", "host;Database=x", "Server=a;Database=b"}
	for _, in := range inputs {
		once := NormalizeConnectionString(in)
		assert.Equal(t, once, NormalizeConnectionString(once), in)
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/filter"
	"github.com/xy-planning-network/trailhead/http/req"
)

const rawForm = "POST /stations?id=1&dept=survey HTTP/1.1\r\n" +
	"Host: example.com:8080\r\n" +
	"Content-Type: application/x-www-form-urlencoded\r\n" +
	"Content-Length: 19\r\n" +
	"Cookie: name=vostok\r\n" +
	"\r\n" +
	"id=42&name=mirny&x="

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.Nil(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestInspectCmd(t *testing.T) {
	// Arrange
	reqPath := writeFile(t, "request.http", rawForm)
	rulesPath := writeFile(t, "rules.yaml", "id: int\nname: default\nmissing: int\n")

	out := new(bytes.Buffer)
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"inspect", reqPath, "--rules", rulesPath})

	// Act
	err := cmd.Execute()

	// Assert
	require.Nil(t, err)

	actual := out.String()
	require.Equal(t, "POST", gjson.Get(actual, "method").String())
	require.Equal(t, "example.com", gjson.Get(actual, "host").String())
	require.Equal(t, int64(8080), gjson.Get(actual, "port").Int())
	require.Equal(t, "/stations", gjson.Get(actual, "path").String())
	require.Equal(t, int64(42), gjson.Get(actual, "fields.id").Int())
	require.Equal(t, "vostok", gjson.Get(actual, "fields.name").String())
	require.Equal(t, gjson.Null, gjson.Get(actual, "fields.missing").Type)
	require.Equal(t, "mirny", gjson.Get(actual, "bodyParams.name").String())
	require.Equal(t, "survey", gjson.Get(actual, "queryParams.dept").String())
}

func TestInspectCmdStdin(t *testing.T) {
	// Arrange
	out := new(bytes.Buffer)
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader("GET /?tag=a HTTP/1.1\r\nHost: example.com\r\nX-Tag: b\r\n\r\n"))
	cmd.SetArgs([]string{"inspect"})

	// Act
	err := cmd.Execute()

	// Assert
	require.Nil(t, err)
	require.Equal(t, "b", gjson.Get(out.String(), "headers.x-tag").String())
	require.Equal(t, "a", gjson.Get(out.String(), "queryParams.tag").String())
}

func TestInspectCmdStrict(t *testing.T) {
	// Arrange
	reqPath := writeFile(t, "request.http", "GET /?id=abc HTTP/1.1\r\nHost: example.com\r\n\r\n")
	rulesPath := writeFile(t, "rules.yaml", "id: int\n")

	out := new(bytes.Buffer)
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"inspect", reqPath, "--rules", rulesPath, "--strict"})

	// Act
	err := cmd.Execute()

	// Assert
	require.ErrorIs(t, err, trailhead.ErrNotValid)

	var verrs req.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, []string{"id"}, verrs.Fields())
	require.Equal(t, "id", gjson.Get(out.String(), "invalid.0").String())
}

func TestInspect(t *testing.T) {
	for _, tc := range []struct {
		name  string
		raw   string
		rules filter.Rules
		err   error
	}{
		{"Empty", "", filter.Rules{}, trailhead.ErrMissingData},
		{"Not-HTTP", "hello\r\n\r\n", filter.Rules{}, trailhead.ErrBadFormat},
		{"Unknown-Filter", "GET / HTTP/1.1\r\nHost: example.com\r\n\r\n", filter.Rules{"id": {Filter: "sideways"}}, trailhead.ErrBadConfig},
		{
			"Unsupported-Media-Type",
			"POST / HTTP/1.1\r\nHost: example.com\r\nContent-Type: application/x-unknown\r\nContent-Length: 3\r\n\r\nabc",
			filter.Rules{},
			trailhead.ErrUnsupportedMediaType,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			actual, err := inspect(strings.NewReader(tc.raw), tc.rules)

			// Assert
			require.ErrorIs(t, err, tc.err)
			require.Nil(t, actual)
		})
	}
}

func TestVersionCmd(t *testing.T) {
	// Arrange
	out := new(bytes.Buffer)
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version"})

	// Act
	err := cmd.Execute()

	// Assert
	require.Nil(t, err)
	require.Equal(t, "version=dev commit=none buildDate=unknown\n", out.String())
}

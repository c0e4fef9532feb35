package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

const sample = `app.name=${user.name}
[server]
port = 8080

logging:
  level: $level
`

func TestConvert(t *testing.T) {
	convey.Convey("parse, query and encode", t, func() {
		p := &ParseParams{Format: "auto", To: "json", Set: []string{"user.name=svc", "level=debug"}}
		out, warnings, err := convert(sample, p, nil)
		convey.So(err, convey.ShouldBeNil)
		convey.So(warnings, convey.ShouldBeEmpty)
		convey.So(string(out), convey.ShouldContainSubstring, `"name": "svc"`)
		convey.So(string(out), convey.ShouldContainSubstring, `"level": "debug"`)

		p.Find = "server.port + 1"
		out, _, err = convert(sample, p, nil)
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(out), convey.ShouldEqual, "8081\n")
	})

	convey.Convey("environment variables live under env", t, func() {
		p := &ParseParams{Format: "auto", To: "yaml", Env: true}
		out, _, err := convert("home=${env.HOME}\n", p, []string{"HOME=/root"})
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(out), convey.ShouldEqual, "home: /root\n")
	})

	convey.Convey("a variable file", t, func() {
		path := filepath.Join(t.TempDir(), "vars.jsonc")
		convey.So(os.WriteFile(path, []byte(`{"user": {"name": "file"}, // c
}`), 0o644), convey.ShouldBeNil)
		p := &ParseParams{Format: "properties", To: "toml", Vars: path, Set: []string{"level=warn"}}
		out, _, err := convert("a.b=${user.name}\nc=$level\n", p, nil)
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(out), convey.ShouldContainSubstring, `c = "warn"`)
		convey.So(string(out), convey.ShouldContainSubstring, "[a]")
		convey.So(string(out), convey.ShouldContainSubstring, `b = "file"`)
	})

	convey.Convey("failures", t, func() {
		_, _, err := convert(sample, &ParseParams{Format: "ini"}, nil)
		convey.So(err, convey.ShouldNotBeNil)

		_, _, err = convert(sample, &ParseParams{Format: "auto"}, nil)
		convey.So(err.Error(), convey.ShouldContainSubstring, "user.name")

		_, _, err = convert("a=1\n", &ParseParams{Format: "auto", To: "xml"}, nil)
		convey.So(err, convey.ShouldNotBeNil)

		_, _, err = convert("a=1\n", &ParseParams{Format: "auto", To: "toml", Find: "a"}, nil)
		convey.So(err, convey.ShouldNotBeNil)

		_, warnings, err := convert("a=1\nbroken\n", &ParseParams{Format: "auto", Find: "a +"}, nil)
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(warnings, convey.ShouldHaveLength, 1)
	})
}

func TestQuery(t *testing.T) {
	convey.Convey("non-mapping data is exposed as data", t, func() {
		v, err := query([]any{int64(1), int64(2)}, "len(data)")
		convey.So(err, convey.ShouldBeNil)
		convey.So(v, convey.ShouldEqual, 2)
	})
}

func TestPrintWarnings(t *testing.T) {
	convey.Convey("plain output off a terminal", t, func() {
		var buf bytes.Buffer
		printWarnings(&buf, []string{"toml:3: bad", "x: y"})
		convey.So(buf.String(), convey.ShouldEqual, "warning: toml:3: bad\nwarning: x: y\n")
	})
}

func TestDescribe(t *testing.T) {
	convey.Convey("segments and overall format", t, func() {
		var buf bytes.Buffer
		describe(&buf, sample)
		convey.So(buf.String(), convey.ShouldEqual, "1-1\tproperties\n2-4\ttoml\n5-7\tyaml\nformat\ttoml\n")
	})
}

func TestRootCommand(t *testing.T) {
	convey.Convey("parse writes to the output file", t, func() {
		dir := t.TempDir()
		in := filepath.Join(dir, "app.conf")
		out := filepath.Join(dir, "out", "app.yaml")
		convey.So(os.WriteFile(in, []byte("a.b=1\n"), 0o644), convey.ShouldBeNil)

		rootCmd.SetArgs([]string{"parse", "-i", in, "-o", out, "--to", "yaml"})
		convey.So(rootCmd.Execute(), convey.ShouldBeNil)
		b, err := os.ReadFile(out)
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(b), convey.ShouldEqual, "a:\n    b: 1\n")
	})

	convey.Convey("strict mode fails on warnings", t, func() {
		in := filepath.Join(t.TempDir(), "app.conf")
		convey.So(os.WriteFile(in, []byte("a=1\nbroken\n"), 0o644), convey.ShouldBeNil)

		var stderr bytes.Buffer
		rootCmd.SetErr(&stderr)
		rootCmd.SetOut(&bytes.Buffer{})
		rootCmd.SetArgs([]string{"parse", "-i", in, "-o", "", "--to", "json", "--strict"})
		convey.So(rootCmd.Execute(), convey.ShouldNotBeNil)
		convey.So(stderr.String(), convey.ShouldContainSubstring, "properties:2:")
	})
}

package yaml

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseMapping(t *testing.T) {
	convey.Convey("nested mappings and sequences", t, func() {
		src := `server:
  host: localhost
  port: 8080
  tags:
    - web
    - api
debug: true
ratio: 0.5
name: "${app.name}"
`
		var warnings []string
		got := Parse(src, func(_ int, msg string) { warnings = append(warnings, msg) })
		want := map[string]any{
			"server": map[string]any{
				"host": "localhost",
				"port": int64(8080),
				"tags": []any{"web", "api"},
			},
			"debug": true,
			"ratio": 0.5,
			"name":  "${app.name}",
		}
		convey.So(warnings, convey.ShouldBeEmpty)
		convey.So(cmp.Diff(want, got), convey.ShouldBeEmpty)
	})

	convey.Convey("non-string keys are stringified", t, func() {
		got := Parse("1: one\ntrue: yes\n", nil)
		want := map[string]any{"1": "one", "true": "yes"}
		convey.So(cmp.Diff(want, got), convey.ShouldBeEmpty)
	})
}

func TestParseNonMapping(t *testing.T) {
	convey.Convey("top-level sequences and scalars", t, func() {
		convey.So(cmp.Diff([]any{"a", int64(2)}, Parse("- a\n- 2\n", nil)), convey.ShouldBeEmpty)
		convey.So(Parse("hello", nil), convey.ShouldEqual, "hello")
		convey.So(Parse("", nil), convey.ShouldBeNil)
	})
}

func TestParseMalformed(t *testing.T) {
	convey.Convey("a rejected line is dropped and reported", t, func() {
		src := `app:
  name: svc
  bad: value: x
  env: prod
`
		type warning struct {
			line int
			msg  string
		}
		var ws []warning
		got := Parse(src, func(line int, msg string) { ws = append(ws, warning{line, msg}) })
		want := map[string]any{
			"app": map[string]any{"name": "svc", "env": "prod"},
		}
		convey.So(cmp.Diff(want, got), convey.ShouldBeEmpty)
		convey.So(ws, convey.ShouldHaveLength, 1)
		convey.So(ws[0].line, convey.ShouldEqual, 3)
		convey.So(ws[0].msg, convey.ShouldContainSubstring, "bad: value: x")
	})

	convey.Convey("error messages are split from their line", t, func() {
		line, msg := splitError(errString("yaml: line 12: did not find expected key"))
		convey.So(line, convey.ShouldEqual, 12)
		convey.So(msg, convey.ShouldEqual, "did not find expected key")

		line, msg = splitError(errString("something else"))
		convey.So(line, convey.ShouldEqual, 0)
		convey.So(msg, convey.ShouldEqual, "something else")
	})
}

func TestParseMustache(t *testing.T) {
	convey.Convey("unquoted {{path}} values stay strings", t, func() {
		src := `app:
  name: {{user.name}}
  port: 80
  debug: true
  hosts:
    - {{ primary }}
    - web
`
		var warnings []string
		got := Parse(src, func(_ int, msg string) { warnings = append(warnings, msg) })
		want := map[string]any{
			"app": map[string]any{
				"name":  "{{user.name}}",
				"port":  int64(80),
				"debug": true,
				"hosts": []any{"{{primary}}", "web"},
			},
		}
		convey.So(warnings, convey.ShouldBeEmpty)
		convey.So(cmp.Diff(want, got), convey.ShouldBeEmpty)
	})

	convey.Convey("an unquoted {{path}} key becomes a string key", t, func() {
		got := Parse("{{key}}: 1\n", nil)
		convey.So(cmp.Diff(map[string]any{"{{key}}": int64(1)}, got), convey.ShouldBeEmpty)
	})

	convey.Convey("other collection keys are dropped with a warning", t, func() {
		type warning struct {
			line int
			msg  string
		}
		var ws []warning
		got := Parse("ok: 1\n[a, b]: 2\n", func(line int, msg string) { ws = append(ws, warning{line, msg}) })
		convey.So(cmp.Diff(map[string]any{"ok": int64(1)}, got), convey.ShouldBeEmpty)
		convey.So(ws, convey.ShouldHaveLength, 1)
		convey.So(ws[0].line, convey.ShouldEqual, 2)
	})
}

type errString string

func (e errString) Error() string { return string(e) }

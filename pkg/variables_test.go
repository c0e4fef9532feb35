package pkg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/smartystreets/goconvey/convey"
)

func TestDecodeVariables(t *testing.T) {
	want := map[string]any{
		"user": map[string]any{"name": "John", "age": int64(30)},
		"tags": []any{"a", "b"},
	}

	convey.Convey("json with comments and trailing commas", t, func() {
		src := `{
  // the user
  "user": {"name": "John", "age": 30,},
  "tags": ["a", "b"],
}`
		got, err := DecodeVariables(".jsonc", []byte(src))
		convey.So(err, convey.ShouldBeNil)
		convey.So(cmp.Diff(want, got), convey.ShouldBeEmpty)
	})

	convey.Convey("json floats stay floats", t, func() {
		got, err := DecodeVariables("json", []byte(`{"ratio": 0.5}`))
		convey.So(err, convey.ShouldBeNil)
		convey.So(got["ratio"], convey.ShouldEqual, 0.5)
	})

	convey.Convey("yaml", t, func() {
		src := "user:\n  name: John\n  age: 30\ntags: [a, b]\n"
		got, err := DecodeVariables(".yml", []byte(src))
		convey.So(err, convey.ShouldBeNil)
		convey.So(cmp.Diff(want, got), convey.ShouldBeEmpty)
	})

	convey.Convey("toml", t, func() {
		src := "tags = [\"a\", \"b\"]\n[user]\nname = \"John\"\nage = 30\n"
		got, err := DecodeVariables(".TOML", []byte(src))
		convey.So(err, convey.ShouldBeNil)
		convey.So(cmp.Diff(want, got), convey.ShouldBeEmpty)
	})

	convey.Convey("an empty yaml file is an empty bag", t, func() {
		got, err := DecodeVariables(".yaml", nil)
		convey.So(err, convey.ShouldBeNil)
		convey.So(got, convey.ShouldBeEmpty)
	})

	convey.Convey("bad inputs", t, func() {
		_, err := DecodeVariables(".ini", []byte("a=1"))
		convey.So(errors.Is(err, ErrBadVariableFile), convey.ShouldBeTrue)

		_, err = DecodeVariables(".yaml", []byte("- a\n- b\n"))
		convey.So(errors.Is(err, ErrBadVariableFile), convey.ShouldBeTrue)

		_, err = DecodeVariables(".json", []byte("{"))
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestLoadVariables(t *testing.T) {
	convey.Convey("loads by extension", t, func() {
		p := filepath.Join(t.TempDir(), "vars.yaml")
		convey.So(os.WriteFile(p, []byte("env: prod\n"), 0o644), convey.ShouldBeNil)
		got, err := LoadVariables(p)
		convey.So(err, convey.ShouldBeNil)
		convey.So(got["env"], convey.ShouldEqual, "prod")

		_, err = LoadVariables(filepath.Join(t.TempDir(), "missing.json"))
		convey.So(errors.Is(err, os.ErrNotExist), convey.ShouldBeTrue)
	})
}

func TestSetVariable(t *testing.T) {
	convey.Convey("assignments build nested values", t, func() {
		bag := map[string]any{"user": "flat"}
		convey.So(SetVariable(bag, "user.name=John"), convey.ShouldBeNil)
		convey.So(SetVariable(bag, "user.age = 30"), convey.ShouldBeNil)
		convey.So(SetVariable(bag, "debug=true"), convey.ShouldBeNil)
		convey.So(SetVariable(bag, "url=http://x?a=b"), convey.ShouldBeNil)
		want := map[string]any{
			"user":  map[string]any{"name": "John", "age": int64(30)},
			"debug": true,
			"url":   "http://x?a=b",
		}
		convey.So(cmp.Diff(want, bag), convey.ShouldBeEmpty)

		convey.So(SetVariable(bag, "debug=undefined"), convey.ShouldBeNil)
		convey.So(bag, convey.ShouldNotContainKey, "debug")
	})

	convey.Convey("malformed assignments", t, func() {
		bag := map[string]any{}
		for _, a := range []string{"novalue", "=1", "a..b=1", "a.=1"} {
			convey.So(errors.Is(SetVariable(bag, a), ErrBadAssignment), convey.ShouldBeTrue)
		}
	})
}

func TestEnvVariables(t *testing.T) {
	convey.Convey("environ pairs", t, func() {
		got := EnvVariables([]string{"HOME=/root", "EMPTY=", "A=b=c", "broken"})
		want := map[string]any{"HOME": "/root", "EMPTY": "", "A": "b=c"}
		convey.So(cmp.Diff(want, got), convey.ShouldBeEmpty)
	})
}

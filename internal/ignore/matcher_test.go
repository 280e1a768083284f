package ignore

import "testing"

func TestMatcher_DefaultAndUserOverrides(t *testing.T) {
	m := NewMatcher([]string{
		"vendor/**",
		"!vendor/keep/File.cs",
		"*.tmp",
	})

	cases := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{path: ".git/config", isDir: false, ignored: true},
		{path: "src/App/obj/Debug/net8.0/App.AssemblyInfo.cs", isDir: false, ignored: true},
		{path: "src/App/bin", isDir: true, ignored: true},
		{path: "Generated/Demo.Widget_UniqueIds.g.cs", isDir: false, ignored: true},
		{path: "vendor/lib/A.cs", isDir: false, ignored: true},
		{path: "vendor/keep/File.cs", isDir: false, ignored: false},
		{path: "nested/cache.tmp", isDir: false, ignored: true},
		{path: "src/App/Widget.cs", isDir: false, ignored: false},
	}

	for _, tc := range cases {
		got := m.ShouldIgnore(tc.path, tc.isDir)
		if got != tc.ignored {
			t.Fatalf("path %s: expected ignored=%v, got %v", tc.path, tc.ignored, got)
		}
	}
}

func TestMatcher_NegatedDirectoryRule(t *testing.T) {
	m := NewMatcher([]string{
		"build/",
		"!build/include/",
	})

	if !m.ShouldIgnore("build/out/File.cs", false) {
		t.Fatalf("expected build/out/File.cs to be ignored")
	}
	if m.ShouldIgnore("build/include/File.cs", false) {
		t.Fatalf("expected build/include/File.cs to be included")
	}
}

func TestMatcher_AnchoredRule(t *testing.T) {
	m := NewMatcher([]string{"/samples/"})

	if !m.ShouldIgnore("samples/Demo.cs", false) {
		t.Fatalf("expected samples/Demo.cs to be ignored")
	}
	if m.ShouldIgnore("src/samples/Demo.cs", false) {
		t.Fatalf("expected anchored rule to leave src/samples alone")
	}
}

func TestMatcher_AnchoredDirectoryDuringWalk(t *testing.T) {
	m := NewMatcher([]string{"/samples/"})

	if !m.ShouldIgnore("samples", true) {
		t.Fatalf("expected root samples directory to be ignored")
	}
	if m.ShouldIgnore("src/samples", true) {
		t.Fatalf("expected nested samples directory to be walked")
	}
}

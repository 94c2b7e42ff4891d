package glsl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Variable is a reflected global declaration.
type Variable struct {
	Name      string
	Type      string
	ArraySize int // 0 for scalars
}

// CompiledStage is a validated stage with its reflected interface.
type CompiledStage struct {
	Stage    Stage
	Version  int
	Profile  string // "core", "compatibility", "es" or empty
	Source   string
	Uniforms []Variable
	Inputs   []Variable
	Outputs  []Variable
}

// CompileError reports an invalid stage source in GL info-log form.
type CompileError struct {
	Stage Stage
	Line  int
	Msg   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("ERROR: 0:%d: %s", e.Line, e.Msg)
}

// Compiler validates and links GLSL stages.
// The zero value is ready to use and safe for concurrent use.
type Compiler struct{}

// NewCompiler returns a Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

var (
	mainRe = regexp.MustCompile(`\bvoid\s+main\s*\(\s*(void)?\s*\)`)
	declRe = regexp.MustCompile(`^(?:layout\s*\([^)]*\)\s*)?` +
		`(?:(?:flat|smooth|noperspective|centroid|invariant|patch|highp|mediump|lowp)\s+)*` +
		`(uniform|in|out|attribute|varying)\s+` +
		`(?:(?:flat|smooth|noperspective|centroid|highp|mediump|lowp)\s+)*` +
		`(\w+)\s+(.+)$`)
	declaratorRe = regexp.MustCompile(`^(\w+)\s*(?:\[\s*(\d*)\s*\])?$`)
)

// minimum desktop GLSL version per stage.
var minDesktopVersion = map[Stage]int{
	StageGeometry:    150,
	StageTessControl: 400,
	StageTessEval:    400,
	StageCompute:     430,
}

// minimum GLSL ES version per stage.
var minESVersion = map[Stage]int{
	StageGeometry:    320,
	StageTessControl: 320,
	StageTessEval:    320,
	StageCompute:     310,
}

var desktopVersions = map[int]bool{
	110: true, 120: true, 130: true, 140: true, 150: true,
	330: true, 400: true, 410: true, 420: true, 430: true, 440: true, 450: true, 460: true,
}

var esVersions = map[int]bool{100: true, 300: true, 310: true, 320: true}

// Compile validates one stage and reflects its global interface.
func (c *Compiler) Compile(stage Stage, source string) (CompiledStage, error) {
	if !stage.Valid() {
		return CompiledStage{}, &CompileError{Stage: stage, Msg: "unknown shader stage"}
	}

	code := stripComments(source)
	if strings.TrimSpace(code) == "" {
		return CompiledStage{}, &CompileError{Stage: stage, Msg: "empty shader source"}
	}

	version, profile, err := parseVersion(stage, code)
	if err != nil {
		return CompiledStage{}, err
	}
	if err := checkBalanced(stage, code); err != nil {
		return CompiledStage{}, err
	}
	if !mainRe.MatchString(code) {
		return CompiledStage{}, &CompileError{Stage: stage, Msg: "missing entry point 'void main()'"}
	}

	out := CompiledStage{
		Stage:   stage,
		Version: version,
		Profile: profile,
		Source:  source,
	}
	for _, stmt := range globalStatements(code) {
		m := declRe.FindStringSubmatch(stmt)
		if m == nil {
			continue
		}
		vars := parseDeclarators(m[2], m[3])
		switch m[1] {
		case "uniform":
			out.Uniforms = append(out.Uniforms, vars...)
		case "in", "attribute":
			out.Inputs = append(out.Inputs, vars...)
		case "varying":
			if stage == StageVertex {
				out.Outputs = append(out.Outputs, vars...)
			} else {
				out.Inputs = append(out.Inputs, vars...)
			}
		case "out":
			out.Outputs = append(out.Outputs, vars...)
		}
	}
	return out, nil
}

// parseVersion checks the leading #version directive against the stage.
func parseVersion(stage Stage, code string) (int, string, error) {
	for i, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(trimmed, "#"))
		if !strings.HasPrefix(trimmed, "#") || len(fields) == 0 || fields[0] != "version" {
			return 0, "", &CompileError{Stage: stage, Line: i + 1, Msg: "#version directive must come first"}
		}
		if len(fields) < 2 || len(fields) > 3 {
			return 0, "", &CompileError{Stage: stage, Line: i + 1, Msg: "malformed #version directive"}
		}
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, "", &CompileError{Stage: stage, Line: i + 1, Msg: fmt.Sprintf("invalid version number %q", fields[1])}
		}
		profile := ""
		if len(fields) == 3 {
			profile = fields[2]
		}

		known, minimums := desktopVersions, minDesktopVersion
		switch profile {
		case "es":
			known, minimums = esVersions, minESVersion
		case "", "core", "compatibility":
		default:
			return 0, "", &CompileError{Stage: stage, Line: i + 1, Msg: fmt.Sprintf("unknown profile %q", profile)}
		}
		if v == 100 && profile == "" {
			known, minimums = esVersions, minESVersion
		}
		if !known[v] {
			return 0, "", &CompileError{Stage: stage, Line: i + 1, Msg: fmt.Sprintf("unsupported version %d", v)}
		}
		if minVer, ok := minimums[stage]; ok && v < minVer {
			return 0, "", &CompileError{Stage: stage, Line: i + 1,
				Msg: fmt.Sprintf("%s shaders require version %d or later", stage, minVer)}
		}
		return v, profile, nil
	}
	return 0, "", &CompileError{Stage: stage, Msg: "empty shader source"}
}

// checkBalanced verifies (), [] and {} nest correctly.
func checkBalanced(stage Stage, code string) error {
	type open struct {
		ch   byte
		line int
	}
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}
	var stack []open
	line := 1
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch ch {
		case '\n':
			line++
		case '(', '[', '{':
			stack = append(stack, open{ch, line})
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1].ch != pairs[ch] {
				return &CompileError{Stage: stage, Line: line, Msg: fmt.Sprintf("unexpected '%c'", ch)}
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return &CompileError{Stage: stage, Line: top.line, Msg: fmt.Sprintf("unclosed '%c'", top.ch)}
	}
	return nil
}

// stripComments blanks // and /* */ comments, keeping newlines so line
// numbers stay stable.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(src); i++ {
		switch {
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				b.WriteByte('\n')
			}
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i < len(src) && !(src[i] == '*' && i+1 < len(src) && src[i+1] == '/') {
				if src[i] == '\n' {
					b.WriteByte('\n')
				}
				i++
			}
			i++
			b.WriteByte(' ')
		default:
			b.WriteByte(src[i])
		}
	}
	return b.String()
}

// globalStatements returns the ';'-terminated statements at brace depth 0,
// whitespace-normalized, with preprocessor lines removed.
func globalStatements(code string) []string {
	var lines []string
	for _, l := range strings.Split(code, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(l), "#") {
			lines = append(lines, l)
		}
	}
	code = strings.Join(lines, "\n")

	var stmts []string
	var cur strings.Builder
	depth := 0
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch == '{':
			depth++
			cur.Reset()
		case ch == '}':
			depth--
			cur.Reset()
		case depth > 0:
		case ch == ';':
			if s := strings.Join(strings.Fields(cur.String()), " "); s != "" {
				stmts = append(stmts, s)
			}
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return stmts
}

func parseDeclarators(typ, rest string) []Variable {
	var vars []Variable
	for _, d := range strings.Split(rest, ",") {
		m := declaratorRe.FindStringSubmatch(strings.TrimSpace(d))
		if m == nil {
			continue
		}
		v := Variable{Name: m[1], Type: typ}
		if m[2] != "" {
			v.ArraySize, _ = strconv.Atoi(m[2])
		}
		vars = append(vars, v)
	}
	return vars
}

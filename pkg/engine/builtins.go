package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/umbralith/umbra/pkg/scene"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms umbra Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: look-at -> look_at
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a v3.Vec so it can be passed between builtins.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.3f %.3f %.3f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a scene.Shape so shape builtins can compose trees.
type sexpShape struct {
	s scene.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	switch v := s.s.(type) {
	case scene.Sphere:
		return fmt.Sprintf("(sphere :radius %.3f)", v.Radius)
	case scene.Box:
		return "(box)"
	case scene.Plane:
		return "(plane)"
	case scene.Union:
		return "(union ...)"
	case scene.Intersection:
		return "(intersection ...)"
	case scene.Subtraction:
		return "(subtraction ...)"
	default:
		return "(shape)"
	}
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value - treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toShape extracts a scene.Shape from a sexpShape.
func toShape(s zygo.Sexp) (scene.Shape, error) {
	if v, ok := s.(*sexpShape); ok {
		return v.s, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// operatorShape left-folds two or more operands with a binary operator
// constructor, so (union a b c) builds union(union(a b) c).
func operatorShape(name string, args []zygo.Sexp, join func(a, b scene.Shape) scene.Shape) (zygo.Sexp, error) {
	if len(args) < 2 {
		return zygo.SexpNull, fmt.Errorf("%s requires at least 2 shapes, got %d", name, len(args))
	}
	acc, err := toShape(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: operand 1: %w", name, err)
	}
	for i := 1; i < len(args); i++ {
		b, err := toShape(args[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: operand %d: %w", name, i+1, err)
		}
		acc = join(acc, b)
	}
	return &sexpShape{s: acc}, nil
}

// registerBuiltins installs all umbra DSL builtins into a zygomys environment.
// The builtins operate on the provided Design, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, d *scene.Design) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :at (vec3 0 0 5) :radius 1)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		s := scene.Sphere{Radius: 1}

		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: at: %w", err)
			}
			s.At = vec
		}
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
			s.Radius = f
		}

		return &sexpShape{s: s}, nil
	})

	// -----------------------------------------------------------------------
	// (box :at (vec3 0 0 5) :size (vec3 2 1 1))
	//
	// :size is the full edge length per axis; the record format stores half
	// extents, so the conversion happens here.
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		b := scene.Box{HalfExtents: v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}}

		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: at: %w", err)
			}
			b.At = vec
		}
		if v, ok := pa.kw["size"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
			}
			b.HalfExtents = vec.MulScalar(0.5)
		}

		return &sexpShape{s: b}, nil
	})

	// -----------------------------------------------------------------------
	// (plane :at (vec3 0 -1 0) :normal (vec3 0 1 0))
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		p := scene.Plane{Normal: v3.Vec{Y: 1}}

		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("plane: at: %w", err)
			}
			p.At = vec
		}
		if v, ok := pa.kw["normal"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("plane: normal: %w", err)
			}
			if vec.Length() == 0 {
				return zygo.SexpNull, fmt.Errorf("plane: normal must be non-zero")
			}
			p.Normal = vec.Normalize()
		}

		return &sexpShape{s: p}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...) / (intersection a b ...) / (subtraction a b ...)
	// -----------------------------------------------------------------------
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return operatorShape("union", args, func(a, b scene.Shape) scene.Shape {
			return scene.Union{A: a, B: b}
		})
	})

	env.AddFunction("intersection", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return operatorShape("intersection", args, func(a, b scene.Shape) scene.Shape {
			return scene.Intersection{A: a, B: b}
		})
	})

	env.AddFunction("subtraction", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return operatorShape("subtraction", args, func(a, b scene.Shape) scene.Shape {
			return scene.Subtraction{A: a, B: b}
		})
	})

	// -----------------------------------------------------------------------
	// (camera :at (vec3 0 0 -3) :look-at (vec3 0 0 0) :focal 1.0)
	//
	// Orientation is either a :look-at target or fly-camera :yaw/:pitch
	// angles in degrees; :look-at takes precedence when both appear.
	// -----------------------------------------------------------------------
	env.AddFunction("camera", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("camera: at: %w", err)
			}
			d.CameraPos = vec
		}
		if v, ok := pa.kw["look-at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("camera: look-at: %w", err)
			}
			look := vec
			d.CameraLook = &look
		}
		_, hasYaw := pa.kw["yaw"]
		_, hasPitch := pa.kw["pitch"]
		if hasYaw || hasPitch {
			var angles scene.CameraAngles
			if v, ok := pa.kw["yaw"]; ok {
				f, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("camera: yaw: %w", err)
				}
				angles.Yaw = f
			}
			if v, ok := pa.kw["pitch"]; ok {
				f, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("camera: pitch: %w", err)
				}
				angles.Pitch = f
			}
			d.CameraAngles = &angles
		}
		if v, ok := pa.kw["focal"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("camera: focal: %w", err)
			}
			if f <= 0 {
				return zygo.SexpNull, fmt.Errorf("camera: focal must be positive, got %g", f)
			}
			d.Focal = f
		}

		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (light :at (vec3 -2 2 -4))
	// -----------------------------------------------------------------------
	env.AddFunction("light", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("light: at: %w", err)
			}
			d.LightPos = vec
		}

		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (background 0.1 0.1 0.2)
	// -----------------------------------------------------------------------
	env.AddFunction("background", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("background requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i := range c {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("background: channel %d: %w", i, err)
			}
			c[i] = f
		}
		d.Background = scene.Color{R: c[0], G: c[1], B: c[2]}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (scene shape1 shape2 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("scene", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		for i, arg := range args {
			s, err := toShape(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("scene: entry %d: %w", i+1, err)
			}
			d.AddShape(s)
		}
		return zygo.SexpNull, nil
	})
}

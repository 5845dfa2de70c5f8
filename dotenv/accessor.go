package dotenv

// Var is a required, named read handle. Each Get re-queries the resolver.
type Var struct {
	env  *DotEnv
	name string
}

// Var binds name to d with fail-fast semantics.
func (d *DotEnv) Var(name string) Var {
	return Var{env: d, name: name}
}

func (v Var) Name() string { return v.name }

// Get returns the current value or a *VariableError.
func (v Var) Get() (string, error) {
	return v.env.Fetch(v.name)
}

// NullableVar is a named read handle that reports absence instead of failing.
type NullableVar struct {
	env  *DotEnv
	name string
}

func (d *DotEnv) OrNull(name string) NullableVar {
	return NullableVar{env: d, name: name}
}

func (v NullableVar) Name() string { return v.name }

func (v NullableVar) Get() (string, bool) {
	return v.env.FetchOrNull(v.name)
}

// DefaultVar is a named read handle that falls back to a fixed default.
type DefaultVar struct {
	env          *DotEnv
	name         string
	defaultValue string
}

func (d *DotEnv) OrElse(name, defaultValue string) DefaultVar {
	return DefaultVar{env: d, name: name, defaultValue: defaultValue}
}

func (v DefaultVar) Name() string { return v.name }

func (v DefaultVar) Default() string { return v.defaultValue }

func (v DefaultVar) Get() string {
	return v.env.FetchOr(v.name, v.defaultValue)
}

package di

// PkgNames defines the key names of the services bootstrap registers
// before application configure callbacks run.
type PkgNames struct {
	Config    string
	Logger    string
	Container string
}

// Pkg contains the key names used by the bootstrap layer.
var Pkg = PkgNames{
	Config:    "config",
	Logger:    "logger",
	Container: "container",
}

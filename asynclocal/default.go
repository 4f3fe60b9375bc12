package asynclocal

import (
	"sync"

	"github.com/cschleiden/go-asynclocal/loop"
)

var (
	defaultLocal     *Local
	defaultLocalOnce sync.Once
)

// Default returns the process-wide Local tracking loop.Default.
func Default() *Local {
	defaultLocalOnce.Do(func() {
		defaultLocal = New(loop.Default())
	})

	return defaultLocal
}

func Run(fn func(c *Context) error, opts ...RunOption) error {
	return Default().Run(fn, opts...)
}

func Get(name string) (any, error) {
	return Default().Get(name)
}

func Set(name string, value any) (any, error) {
	return Default().Set(name, value)
}

// GetContext returns the current Context of the default loop, or nil.
func GetContext() *Context {
	return Default().Context()
}

// ContextOf returns the Context registered for operation id of the default loop, or nil.
func ContextOf(id loop.ID) *Context {
	return Default().ContextOf(id)
}

func Bind(fn func() error) func() error {
	return Default().Bind(fn)
}

func BindEmitter(target any) error {
	return Default().BindEmitter(target)
}

func CleanAll() {
	Default().CleanAll()
}

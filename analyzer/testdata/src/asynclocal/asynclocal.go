package asynclocal

type Context struct{}

func Run(fn func(c *Context) error) error {
	return fn(&Context{})
}

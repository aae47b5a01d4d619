package config

// ValidateAll 验证配置，nil 返回 ErrNilConfig
func ValidateAll(c *Config) error {
	if c == nil {
		return ErrNilConfig
	}
	return c.Validate()
}

// MustValidate 验证失败时 panic，仅用于初始化阶段或测试
func MustValidate(c *Config) {
	if err := ValidateAll(c); err != nil {
		panic(err)
	}
}

// Clone 深拷贝配置
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Pipeline.Order = append([]string(nil), c.Pipeline.Order...)
	cp.Blacklist.Rules = append([]string(nil), c.Blacklist.Rules...)
	if c.Socket.Options != nil {
		cp.Socket.Options = make(map[string]int, len(c.Socket.Options))
		for k, v := range c.Socket.Options {
			cp.Socket.Options[k] = v
		}
	}
	return &cp
}

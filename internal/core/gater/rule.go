package gater

import (
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// Rule 远端地址访问规则，返回 false 表示拒绝
//
// 实现须为可比较类型（通常为指针），以便 RemoveRule 按身份移除。
type Rule interface {
	Access(remote net.Addr) bool
}

// hostOf 提取远端 IP，无法解析时 ok 为 false
func hostOf(remote net.Addr) (netip.Addr, bool) {
	if remote == nil {
		return netip.Addr{}, false
	}
	switch a := remote.(type) {
	case *net.TCPAddr:
		ip, ok := netip.AddrFromSlice(a.IP)
		return ip.Unmap(), ok
	case *net.UDPAddr:
		ip, ok := netip.AddrFromSlice(a.IP)
		return ip.Unmap(), ok
	}

	host, _, err := net.SplitHostPort(remote.String())
	if err != nil {
		host = remote.String()
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}

// ============================================================================
//                              内置规则
// ============================================================================

// AddrRule 拒绝单个 IP
type AddrRule struct {
	IP netip.Addr
}

// DenyAddr 创建拒绝 host 的规则，host 无法解析时 panic
func DenyAddr(host string) *AddrRule {
	return &AddrRule{IP: netip.MustParseAddr(host).Unmap()}
}

// Access 实现 Rule
func (r *AddrRule) Access(remote net.Addr) bool {
	ip, ok := hostOf(remote)
	return !ok || ip != r.IP
}

// String 实现 fmt.Stringer
func (r *AddrRule) String() string { return "deny " + r.IP.String() }

// CIDRRule 拒绝或仅允许一个网段
type CIDRRule struct {
	Prefix netip.Prefix
	// AllowOnly 为 true 时拒绝网段以外的地址
	AllowOnly bool
}

// DenyCIDR 创建拒绝网段的规则
func DenyCIDR(cidr string) (*CIDRRule, error) {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRule, cidr, err)
	}
	return &CIDRRule{Prefix: p.Masked()}, nil
}

// AllowCIDR 创建只允许网段内地址的规则
func AllowCIDR(cidr string) (*CIDRRule, error) {
	r, err := DenyCIDR(cidr)
	if err != nil {
		return nil, err
	}
	r.AllowOnly = true
	return r, nil
}

// Access 实现 Rule
func (r *CIDRRule) Access(remote net.Addr) bool {
	ip, ok := hostOf(remote)
	if !ok {
		return !r.AllowOnly
	}
	return r.Prefix.Contains(ip) == r.AllowOnly
}

// String 实现 fmt.Stringer
func (r *CIDRRule) String() string {
	if r.AllowOnly {
		return "allow-only " + r.Prefix.String()
	}
	return "deny " + r.Prefix.String()
}

// FuncRule 任意谓词规则
type FuncRule struct {
	Name string
	Fn   func(remote net.Addr) bool
}

// Func 包装谓词为规则
func Func(name string, fn func(remote net.Addr) bool) *FuncRule {
	return &FuncRule{Name: name, Fn: fn}
}

// Access 实现 Rule
func (r *FuncRule) Access(remote net.Addr) bool { return r.Fn(remote) }

// String 实现 fmt.Stringer
func (r *FuncRule) String() string { return r.Name }

// ParseRule 解析配置中的规则字符串
//
//	"10.0.0.7"        拒绝单个地址
//	"192.168.0.0/16"  拒绝网段
//	"allow:10.0.0.0/8" 只允许网段
func ParseRule(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "allow:"); ok {
		return AllowCIDR(rest)
	}
	if strings.Contains(s, "/") {
		return DenyCIDR(s)
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRule, s, err)
	}
	return &AddrRule{IP: ip.Unmap()}, nil
}

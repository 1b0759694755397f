package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Section is one group of a reference cheatsheet.
type Section struct {
	Title    string
	Commands []string
}

var redHat = []Section{
	{"File Operations", []string{
		"ls", "pwd", "cd", "mkdir", "rmdir", "rm -r", "cp", "mv", "touch", "cat",
		"more", "less", "head", "tail", "find", "locate", "stat",
	}},
	{"Permissions", []string{"chmod", "chown", "chgrp", "umask"}},
	{"Package Management", []string{"yum install", "yum remove", "yum update", "rpm -ivh", "dnf install"}},
	{"Process Management", []string{"ps aux", "top", "htop", "kill", "killall", "free -h"}},
	{"Disk Management", []string{"df -h", "du -sh"}},
	{"Networking", []string{"ip addr", "ping", "curl", "wget", "netstat -tuln", "ss -tuln", "scp", "ssh"}},
	{"User Management", []string{"adduser", "passwd", "userdel", "groupadd", "usermod -aG"}},
	{"System Management", []string{"reboot", "shutdown -h now", "systemctl status", "systemctl restart", "journalctl -xe"}},
}

// Cheatsheet returns the Red Hat Linux command reference. The result is a
// copy the caller may modify.
func Cheatsheet() []Section {
	out := make([]Section, len(redHat))
	for i, s := range redHat {
		out[i] = Section{Title: s.Title, Commands: append([]string(nil), s.Commands...)}
	}
	return out
}

// FilterSections keeps sections whose title contains group (case-insensitive)
// and, when query is set, only the commands fuzzy-matching it. Sections left
// empty are dropped.
func FilterSections(sections []Section, group, query string) []Section {
	var out []Section
	for _, s := range sections {
		if group != "" && !strings.Contains(strings.ToLower(s.Title), strings.ToLower(group)) {
			continue
		}
		cmds := s.Commands
		if query != "" {
			matches := fuzzy.Find(query, s.Commands)
			cmds = make([]string, 0, len(matches))
			for _, m := range matches {
				cmds = append(cmds, m.Str)
			}
		}
		if len(cmds) > 0 {
			out = append(out, Section{Title: s.Title, Commands: cmds})
		}
	}
	return out
}

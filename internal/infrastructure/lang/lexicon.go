package lang

// knownCommands are first words that mark an input as a shell command.
var knownCommands = map[string]struct{}{}

// nlIndicators are lower-case substrings that suggest natural language.
var nlIndicators = []string{
	"create", "make", "generate", "show", "list", "find", "help",
	"how", "what", "why", "when", "where", "who", "please",
	"can you", "i want", "i need", "give me", "tell me",
	"explain", "fix", "solve", "write", "build", "delete", "remove",
	"add", "update", "change", "could", "would", "should", "will",
	"does", "is", "are", "was",
}

func init() {
	for _, name := range []string{
		"ls", "cd", "pwd", "mkdir", "rm", "cp", "mv", "cat", "echo", "grep",
		"find", "chmod", "chown", "ps", "kill", "top", "man", "git", "docker",
		"npm", "pip", "python", "node", "make", "gcc", "vim", "nano", "less",
		"more", "head", "tail", "sed", "awk", "curl", "wget", "ssh", "scp",
		"tar", "zip", "unzip", "df", "du", "mount", "umount", "apt", "yum",
		"dnf", "brew", "systemctl", "journalctl", "service", "export",
		"source", "alias", "which", "whoami", "hostname", "ifconfig", "ip",
		"ping", "netstat", "ss",
	} {
		knownCommands[name] = struct{}{}
	}
}

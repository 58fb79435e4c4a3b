package translator

import "strings"

const rulesPlaceholder = "{{RULES}}"

// promptTemplate asks for a TC cls_bpf classifier. Only the rules are
// substituted into it.
const promptTemplate = `
    Please translate these iptables rules to an eBPF TC (traffic control) program. 
    The program should follow these requirements:

    1. Use TC's cls_bpf classifier with SEC("classifier") annotation
    2. Include all necessary headers (linux/bpf.h, linux/if_ether.h, etc.)
    3. Handle protocol conditions (TCP, UDP, ICMP)
    4. Support connection tracking states if needed
    5. Use TC_ACT_OK for ACCEPT and TC_ACT_SHOT for DROP
    6. Include proper bounds checking for all packet access
    7. Add detailed comments explaining the translation

    IPTABLES RULES:
    {{RULES}}

    Format the output as a complete, compilable C program with BPF TC format.
    `

// BuildPrompt embeds the rule set verbatim into the fixed template.
func BuildPrompt(rules string) string {
	// A single Replace keeps placeholder-looking text inside rules intact.
	return strings.Replace(promptTemplate, rulesPlaceholder, rules, 1)
}

// oboectl inspects X-Trace identifiers, dry runs sampling decisions and
// sends test events through a configured reporter.
//
// Usage:
//
//	# Generate a sampled identifier
//	oboectl id new
//
//	# Decode an identifier
//	oboectl id parse 2B0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456701
//
//	# Dry run the sampler
//	oboectl sample --mode always --rate 300000 --count 10000
//
//	# Send an entry and exit event through the configured reporter
//	oboectl report --config /etc/oboe.yaml
package main

func main() {
	Execute()
}

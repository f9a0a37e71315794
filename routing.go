package bolt

// AddressResolver maps a configured connection string to the candidate
// connection strings a driver may actually dial, e.g. the members of a
// cluster behind one logical name.
type AddressResolver interface {
	Resolve(target string) ([]string, error)
}

type staticResolver struct {
	candidates []string
}

// NewStaticResolver returns a resolver that always answers with the given
// fixed connection strings, ignoring the target
func NewStaticResolver(connStrs ...string) AddressResolver {
	candidates := make([]string, len(connStrs))
	copy(candidates, connStrs)
	return &staticResolver{candidates: candidates}
}

func (r *staticResolver) Resolve(string) ([]string, error) {
	return r.candidates, nil
}

package retriever

// NewRetriever picks a strategy. A non-nil override wins over the
// process default, so a single request can force reranking on or off.
func NewRetriever(deps Deps, defaultRerank bool, override *bool) Retriever {
	useRerank := defaultRerank
	if override != nil {
		useRerank = *override
	}

	if useRerank {
		return NewRerankRetriever(deps)
	}
	return NewVectorRetriever(deps)
}

package config

type ListingConfig interface {
	GetDefaultPageSize() int
	GetPageSizeOptions() []int
}

type Listing struct{}

var _ ListingConfig = Listing{}

var pageSizeOptions = []int{5, 10, 25}

func (Listing) GetDefaultPageSize() int {
	size := GetEnvInt("PAGE_SIZE", pageSizeOptions[0])
	for _, option := range pageSizeOptions {
		if option == size {
			return size
		}
	}
	return pageSizeOptions[0]
}

func (Listing) GetPageSizeOptions() []int {
	return append([]int(nil), pageSizeOptions...)
}

package mocks

//go:generate mockery --name EventStore --srcpkg github.com/vitalink/vitalink-core/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name BucketStore --srcpkg github.com/vitalink/vitalink-core/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name PendingQueue --srcpkg github.com/vitalink/vitalink-core/internal/aggregation --output ./aggregation --outpkg aggregationmocks --with-expecter

package mocks

//go:generate mockery --name DatabaseInstance --srcpkg github.com/johnmartel/AisCoverage/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter

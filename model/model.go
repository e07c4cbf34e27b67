package model

var Models = []interface{}{
	&AuthorizedUser{},
}

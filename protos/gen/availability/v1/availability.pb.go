// Code generated by protoc-gen-go. DO NOT EDIT.
// versions:
// 	protoc-gen-go v1.36.10
// 	protoc        (unknown)
// source: availability/v1/availability.proto

package availabilityv1

import (
	protoreflect "google.golang.org/protobuf/reflect/protoreflect"
	protoimpl "google.golang.org/protobuf/runtime/protoimpl"
	timestamppb "google.golang.org/protobuf/types/known/timestamppb"
	reflect "reflect"
	sync "sync"
	unsafe "unsafe"
)

const (
	// Verify that this generated code is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(20 - protoimpl.MinVersion)
	// Verify that runtime/protoimpl is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(protoimpl.MaxVersion - 20)
)

type ListWindowsRequest struct {
	state      protoimpl.MessageState `protogen:"open.v1"`
	ProviderId string                 `protobuf:"bytes,1,opt,name=provider_id,json=providerId,proto3" json:"provider_id,omitempty"`
	// Calendar date in YYYY-MM-DD, interpreted in UTC.
	Date          string `protobuf:"bytes,2,opt,name=date,proto3" json:"date,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *ListWindowsRequest) Reset() {
	*x = ListWindowsRequest{}
	mi := &file_availability_v1_availability_proto_msgTypes[0]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *ListWindowsRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*ListWindowsRequest) ProtoMessage() {}

func (x *ListWindowsRequest) ProtoReflect() protoreflect.Message {
	mi := &file_availability_v1_availability_proto_msgTypes[0]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use ListWindowsRequest.ProtoReflect.Descriptor instead.
func (*ListWindowsRequest) Descriptor() ([]byte, []int) {
	return file_availability_v1_availability_proto_rawDescGZIP(), []int{0}
}

func (x *ListWindowsRequest) GetProviderId() string {
	if x != nil {
		return x.ProviderId
	}
	return ""
}

func (x *ListWindowsRequest) GetDate() string {
	if x != nil {
		return x.Date
	}
	return ""
}

type ListWindowsResponse struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	Windows       []*Window              `protobuf:"bytes,1,rep,name=windows,proto3" json:"windows,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *ListWindowsResponse) Reset() {
	*x = ListWindowsResponse{}
	mi := &file_availability_v1_availability_proto_msgTypes[1]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *ListWindowsResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*ListWindowsResponse) ProtoMessage() {}

func (x *ListWindowsResponse) ProtoReflect() protoreflect.Message {
	mi := &file_availability_v1_availability_proto_msgTypes[1]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use ListWindowsResponse.ProtoReflect.Descriptor instead.
func (*ListWindowsResponse) Descriptor() ([]byte, []int) {
	return file_availability_v1_availability_proto_rawDescGZIP(), []int{1}
}

func (x *ListWindowsResponse) GetWindows() []*Window {
	if x != nil {
		return x.Windows
	}
	return nil
}

type Window struct {
	state    protoimpl.MessageState `protogen:"open.v1"`
	Id       string                 `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	StartUtc *timestamppb.Timestamp `protobuf:"bytes,2,opt,name=start_utc,json=startUtc,proto3" json:"start_utc,omitempty"`
	EndUtc   *timestamppb.Timestamp `protobuf:"bytes,3,opt,name=end_utc,json=endUtc,proto3" json:"end_utc,omitempty"`
	// Open windows accept bookings; closed ones carve exceptions out of
	// overlapping open windows.
	IsOpen        bool `protobuf:"varint,4,opt,name=is_open,json=isOpen,proto3" json:"is_open,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *Window) Reset() {
	*x = Window{}
	mi := &file_availability_v1_availability_proto_msgTypes[2]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *Window) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*Window) ProtoMessage() {}

func (x *Window) ProtoReflect() protoreflect.Message {
	mi := &file_availability_v1_availability_proto_msgTypes[2]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use Window.ProtoReflect.Descriptor instead.
func (*Window) Descriptor() ([]byte, []int) {
	return file_availability_v1_availability_proto_rawDescGZIP(), []int{2}
}

func (x *Window) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *Window) GetStartUtc() *timestamppb.Timestamp {
	if x != nil {
		return x.StartUtc
	}
	return nil
}

func (x *Window) GetEndUtc() *timestamppb.Timestamp {
	if x != nil {
		return x.EndUtc
	}
	return nil
}

func (x *Window) GetIsOpen() bool {
	if x != nil {
		return x.IsOpen
	}
	return false
}

var File_availability_v1_availability_proto protoreflect.FileDescriptor

const file_availability_v1_availability_proto_rawDesc = "" +
	"\n" +
	"\"availability/v1/availability.proto\x12\x0favailability.v1\x1a\x1fgoogle/protobuf/timestamp.proto\"I\n" +
	"\x12ListWindowsRequest\x12\x1f\n" +
	"\vprovider_id\x18\x01 \x01(\tR\n" +
	"providerId\x12\x12\n" +
	"\x04date\x18\x02 \x01(\tR\x04date\"H\n" +
	"\x13ListWindowsResponse\x121\n" +
	"\awindows\x18\x01 \x03(\v2\x17.availability.v1.WindowR\awindows\"\x9f\x01\n" +
	"\x06Window\x12\x0e\n" +
	"\x02id\x18\x01 \x01(\tR\x02id\x127\n" +
	"\tstart_utc\x18\x02 \x01(\v2\x1a.google.protobuf.TimestampR\bstartUtc\x123\n" +
	"\aend_utc\x18\x03 \x01(\v2\x1a.google.protobuf.TimestampR\x06endUtc\x12\x17\n" +
	"\ais_open\x18\x04 \x01(\bR\x06isOpen2o\n" +
	"\x13AvailabilityService\x12X\n" +
	"\vListWindows\x12#.availability.v1.ListWindowsRequest\x1a$.availability.v1.ListWindowsResponseBHZFgithub.com/bookline/bookline/protos/gen/availability/v1;availabilityv1b\x06proto3"

var (
	file_availability_v1_availability_proto_rawDescOnce sync.Once
	file_availability_v1_availability_proto_rawDescData []byte
)

func file_availability_v1_availability_proto_rawDescGZIP() []byte {
	file_availability_v1_availability_proto_rawDescOnce.Do(func() {
		file_availability_v1_availability_proto_rawDescData = protoimpl.X.CompressGZIP(unsafe.Slice(unsafe.StringData(file_availability_v1_availability_proto_rawDesc), len(file_availability_v1_availability_proto_rawDesc)))
	})
	return file_availability_v1_availability_proto_rawDescData
}

var file_availability_v1_availability_proto_msgTypes = make([]protoimpl.MessageInfo, 3)
var file_availability_v1_availability_proto_goTypes = []any{
	(*ListWindowsRequest)(nil),    // 0: availability.v1.ListWindowsRequest
	(*ListWindowsResponse)(nil),   // 1: availability.v1.ListWindowsResponse
	(*Window)(nil),                // 2: availability.v1.Window
	(*timestamppb.Timestamp)(nil), // 3: google.protobuf.Timestamp
}
var file_availability_v1_availability_proto_depIdxs = []int32{
	2, // 0: availability.v1.ListWindowsResponse.windows:type_name -> availability.v1.Window
	3, // 1: availability.v1.Window.start_utc:type_name -> google.protobuf.Timestamp
	3, // 2: availability.v1.Window.end_utc:type_name -> google.protobuf.Timestamp
	0, // 3: availability.v1.AvailabilityService.ListWindows:input_type -> availability.v1.ListWindowsRequest
	1, // 4: availability.v1.AvailabilityService.ListWindows:output_type -> availability.v1.ListWindowsResponse
	4, // [4:5] is the sub-list for method output_type
	3, // [3:4] is the sub-list for method input_type
	3, // [3:3] is the sub-list for extension type_name
	3, // [3:3] is the sub-list for extension extendee
	0, // [0:3] is the sub-list for field type_name
}

func init() { file_availability_v1_availability_proto_init() }
func file_availability_v1_availability_proto_init() {
	if File_availability_v1_availability_proto != nil {
		return
	}
	type x struct{}
	out := protoimpl.TypeBuilder{
		File: protoimpl.DescBuilder{
			GoPackagePath: reflect.TypeOf(x{}).PkgPath(),
			RawDescriptor: unsafe.Slice(unsafe.StringData(file_availability_v1_availability_proto_rawDesc), len(file_availability_v1_availability_proto_rawDesc)),
			NumEnums:      0,
			NumMessages:   3,
			NumExtensions: 0,
			NumServices:   1,
		},
		GoTypes:           file_availability_v1_availability_proto_goTypes,
		DependencyIndexes: file_availability_v1_availability_proto_depIdxs,
		MessageInfos:      file_availability_v1_availability_proto_msgTypes,
	}.Build()
	File_availability_v1_availability_proto = out.File
	file_availability_v1_availability_proto_goTypes = nil
	file_availability_v1_availability_proto_depIdxs = nil
}
